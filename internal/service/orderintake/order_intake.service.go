package orderintake

import (
	"context"
	"database/sql"
	"errors"

	"github.com/krobus00/order-intake-service/internal/config"
	"github.com/krobus00/order-intake-service/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrInsufficientBalance = errors.New("insufficient account balance")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrDispatchFailed      = errors.New("failed to dispatch exchange job")
)

const placeOrderMessage = "Purchase order registered successfully."

// OrderIntakeService admits purchase orders: it debits the customer's
// balance and routes the order through the small (batched) or large
// (immediate) path. The whole admission runs in one transaction, so any
// failure, including a queue dispatch failure, leaves no trace.
type OrderIntakeService struct {
	tx        entity.TxRunner
	queue     entity.ExchangeQueue
	threshold decimal.Decimal
	unitPrice decimal.Decimal
}

func NewOrderIntakeService(tx entity.TxRunner, queue entity.ExchangeQueue, cfg config.OrderConfig) *OrderIntakeService {
	return &OrderIntakeService{
		tx:        tx,
		queue:     queue,
		threshold: cfg.PurchaseThreshold,
		unitPrice: cfg.UnitPrice,
	}
}

type PlaceOrderResult struct {
	Message string
	Order   entity.Order
}

func (s *OrderIntakeService) PlaceOrder(ctx context.Context, customerID int64, asset string, amount decimal.Decimal) (*PlaceOrderResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	totalPrice := amount.Mul(s.unitPrice)

	p := placement{
		customerID: customerID,
		asset:      asset,
		amount:     amount,
		totalPrice: totalPrice,
	}

	var placed entity.Order

	err := s.tx.RunInTx(ctx, func(ctx context.Context, stores entity.TxStores) error {
		customer, err := stores.Ledger.GetForUpdate(ctx, customerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCustomerNotFound
			}
			logrus.Error(err)
			return err
		}

		if customer.Balance.LessThan(totalPrice) {
			return ErrInsufficientBalance
		}

		err = stores.Ledger.SetBalance(ctx, customer.ID, customer.Balance.Sub(totalPrice))
		if err != nil {
			logrus.Error(err)
			return err
		}

		order, err := selectStrategy(totalPrice, s.threshold).execute(ctx, stores, s.queue, p)
		if err != nil {
			return err
		}

		placed = *order

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"customer_id": customerID,
		"asset":       asset,
		"order_id":    placed.ID,
		"status":      placed.Status,
		"total_price": totalPrice,
	}).Info("purchase order registered")

	return &PlaceOrderResult{
		Message: placeOrderMessage,
		Order:   placed,
	}, nil
}
