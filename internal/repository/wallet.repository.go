package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/krobus00/order-intake-service/internal/entity"
)

type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) Create(ctx context.Context, wallet *entity.Wallet) error {
	now := time.Now().UTC()
	wallet.CreatedAt = now
	wallet.UpdatedAt = now

	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert(wallet.TableName()).
		Columns(
			"customer_id",
			"balance",
			"created_at",
			"updated_at",
		).
		Values(
			wallet.CustomerID,
			wallet.Balance,
			wallet.CreatedAt,
			wallet.UpdatedAt,
		).
		Suffix("RETURNING id")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return err
	}

	var id int64
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err != nil {
		return err
	}

	wallet.ID = id

	return nil
}

func (r *WalletRepository) ListByCustomer(ctx context.Context, customerID int64) ([]entity.Wallet, error) {
	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("*").
		From("wallets").
		Where(sq.Eq{"customer_id": customerID}).
		OrderBy("id asc")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	var wallets []entity.Wallet
	err = r.db.SelectContext(ctx, &wallets, query, args...)
	if err != nil {
		return nil, err
	}

	return wallets, nil
}
