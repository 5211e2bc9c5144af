package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/krobus00/order-intake-service/internal/config"
	"github.com/krobus00/order-intake-service/internal/entity"
	"github.com/krobus00/order-intake-service/internal/infrastructure"
	"github.com/shopspring/decimal"
)

// TxRunner implements entity.TxRunner over one Postgres database. Every
// store handed to the callback is bound to the same serializable
// transaction, so an error from the callback rolls back all of it.
type TxRunner struct {
	db        *sqlx.DB
	cfg       config.DatabaseConfig
	customers *CustomerRepository
	orders    *OrderRepository
}

func NewTxRunner(db *sqlx.DB, cfg config.DatabaseConfig, customers *CustomerRepository, orders *OrderRepository) *TxRunner {
	return &TxRunner{
		db:        db,
		cfg:       cfg,
		customers: customers,
		orders:    orders,
	}
}

func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, stores entity.TxStores) error) error {
	return infrastructure.WithTransaction(ctx, r.db, r.cfg, func(ctx context.Context, tx *sqlx.Tx) error {
		stores := entity.TxStores{
			Ledger: &ledgerTxStore{tx: tx, repo: r.customers},
			Orders: &orderTxStore{tx: tx, repo: r.orders},
		}

		return fn(ctx, stores)
	})
}

type ledgerTxStore struct {
	tx   *sqlx.Tx
	repo *CustomerRepository
}

func (s *ledgerTxStore) GetForUpdate(ctx context.Context, customerID int64) (*entity.Customer, error) {
	return s.repo.GetForUpdate(ctx, s.tx, customerID)
}

func (s *ledgerTxStore) SetBalance(ctx context.Context, customerID int64, balance decimal.Decimal) error {
	return s.repo.UpdateBalance(ctx, s.tx, customerID, balance)
}

type orderTxStore struct {
	tx   *sqlx.Tx
	repo *OrderRepository
}

func (s *orderTxStore) LockPending(ctx context.Context) ([]entity.Order, error) {
	return s.repo.LockPending(ctx, s.tx)
}

func (s *orderTxStore) MarkCompleted(ctx context.Context, ids []int64) error {
	return s.repo.MarkCompleted(ctx, s.tx, ids)
}

func (s *orderTxStore) Create(ctx context.Context, order *entity.Order) error {
	return s.repo.Create(ctx, s.tx, order)
}
