package entity

import (
	"context"

	"github.com/shopspring/decimal"
)

// LedgerStore is the balance side of the intake transaction. GetForUpdate
// must lock the customer row for the remainder of the transaction.
type LedgerStore interface {
	GetForUpdate(ctx context.Context, customerID int64) (*Customer, error)
	SetBalance(ctx context.Context, customerID int64, balance decimal.Decimal) error
}

// OrderStore is the order side of the intake transaction. LockPending
// returns every pending order locked against concurrent placements; the
// id set it returns is exactly the set MarkCompleted is allowed to flip.
type OrderStore interface {
	LockPending(ctx context.Context) ([]Order, error)
	MarkCompleted(ctx context.Context, ids []int64) error
	Create(ctx context.Context, order *Order) error
}

// TxStores is the view of the stores bound to one open transaction.
type TxStores struct {
	Ledger LedgerStore
	Orders OrderStore
}

// TxRunner executes fn atomically. Any error from fn rolls back every
// store mutation made through the TxStores it was handed.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error
}

// ExchangeQueue accepts fire-and-forget buy jobs. Enqueue may fail
// synchronously; execution results are never observed here.
type ExchangeQueue interface {
	EnqueueBuy(ctx context.Context, asset string, quantity decimal.Decimal) error
}
