package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/krobus00/order-intake-service/internal/entity"
	"github.com/lib/pq"
)

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// LockPending returns every pending order, row-locked for the rest of the
// transaction. The batch flush sums and flips exactly this set, so the
// lock is what keeps concurrent placements from double-flushing or
// dropping each other's rows.
func (r *OrderRepository) LockPending(ctx context.Context, tx *sqlx.Tx) ([]entity.Order, error) {
	var orders []entity.Order
	err := tx.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE status = $1 ORDER BY id FOR UPDATE",
		entity.OrderStatusPending,
	)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepository) MarkCompleted(ctx context.Context, tx *sqlx.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Update("orders").
		Set("status", entity.OrderStatusCompleted).
		Set("updated_at", time.Now().UTC()).
		Where("id = ANY(?)", pq.Array(ids))

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func (r *OrderRepository) Create(ctx context.Context, tx *sqlx.Tx, order *entity.Order) error {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert(order.TableName()).
		Columns(
			"customer_id",
			"price",
			"quantity",
			"status",
			"created_at",
			"updated_at",
		).
		Values(
			order.CustomerID,
			order.Price,
			order.Quantity,
			order.Status,
			order.CreatedAt,
			order.UpdatedAt,
		).
		Suffix("RETURNING id")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return err
	}

	var id int64
	err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	if err != nil {
		return err
	}

	order.ID = id

	return nil
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]entity.Order, error) {
	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("*").
		From("orders").
		Where(sq.Eq{"customer_id": customerID}).
		OrderBy("created_at desc")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	var orders []entity.Order
	err = r.db.SelectContext(ctx, &orders, query, args...)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context, status entity.OrderStatus) (int64, error) {
	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("COUNT(*)").
		From("orders").
		Where(sq.Eq{"status": status})

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	err = r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, err
	}

	return count, nil
}
