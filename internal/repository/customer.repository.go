package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/krobus00/order-intake-service/internal/entity"
	"github.com/shopspring/decimal"
)

type CustomerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert(customer.TableName()).
		Columns(
			"name",
			"balance",
			"created_at",
			"updated_at",
		).
		Values(
			customer.Name,
			customer.Balance,
			customer.CreatedAt,
			customer.UpdatedAt,
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

	customer.ID = id

	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.GetContext(ctx, &customer, "SELECT * FROM customers WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]entity.Customer, error) {
	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("*").
		From("customers").
		OrderBy("id asc")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	var customers []entity.Customer
	err = r.db.SelectContext(ctx, &customers, query, args...)
	if err != nil {
		return nil, err
	}

	return customers, nil
}

// GetForUpdate locks the customer row until the transaction ends so the
// balance read and the subsequent debit see no interleaved writer.
func (r *CustomerRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*entity.Customer, error) {
	var customer entity.Customer
	err := tx.GetContext(ctx, &customer, "SELECT * FROM customers WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) UpdateBalance(ctx context.Context, tx *sqlx.Tx, id int64, balance decimal.Decimal) error {
	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Update("customers").
		Set("balance", balance).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id})

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, query, args...)
	return err
}
