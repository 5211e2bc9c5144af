package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

// Order is one registered purchase. Price is the notional debited from the
// customer (amount * unit price), Quantity the asset amount requested.
// Status only ever moves pending -> completed, via a batch flush; large
// orders are inserted completed directly.
type Order struct {
	ID         int64           `db:"id" json:"id"`
	CustomerID int64           `db:"customer_id" json:"customer_id"`
	Price      decimal.Decimal `db:"price" json:"price"`
	Quantity   decimal.Decimal `db:"quantity" json:"quantity"`
	Status     OrderStatus     `db:"status" json:"status"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

func (o Order) TableName() string {
	return "orders"
}
