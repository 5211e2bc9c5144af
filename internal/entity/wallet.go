package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds the asset balance credited to a customer once purchases
// settle on the exchange side. An empty wallet is opened with the customer;
// settlement is outside this service, so the intake flow never debits it.
type Wallet struct {
	ID         int64           `db:"id" json:"id"`
	CustomerID int64           `db:"customer_id" json:"customer_id"`
	Balance    decimal.Decimal `db:"balance" json:"balance"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

func (w Wallet) TableName() string {
	return "wallets"
}
