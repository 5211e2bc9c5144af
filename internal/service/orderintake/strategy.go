package orderintake

import (
	"context"
	"fmt"

	"github.com/krobus00/order-intake-service/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type placement struct {
	customerID int64
	asset      string
	amount     decimal.Decimal
	totalPrice decimal.Decimal
}

// orderStrategy is a closed pair of variants sharing one execute contract.
type orderStrategy interface {
	execute(ctx context.Context, stores entity.TxStores, queue entity.ExchangeQueue, p placement) (*entity.Order, error)
}

// selectStrategy is a pure comparison: strictly below the threshold
// batches, at or above executes immediately.
func selectStrategy(totalPrice, threshold decimal.Decimal) orderStrategy {
	if totalPrice.LessThan(threshold) {
		return smallOrderStrategy{threshold: threshold}
	}

	return largeOrderStrategy{}
}

// smallOrderStrategy accumulates small orders against the pending pool and
// flushes the whole pool as one exchange job once the running total
// reaches the threshold. The pool is the set of rows LockPending returns;
// summing and flipping the same locked set is what makes the flush safe
// against concurrent placements.
type smallOrderStrategy struct {
	threshold decimal.Decimal
}

func (s smallOrderStrategy) execute(ctx context.Context, stores entity.TxStores, queue entity.ExchangeQueue, p placement) (*entity.Order, error) {
	pending, err := stores.Orders.LockPending(ctx)
	if err != nil {
		logrus.Error(err)
		return nil, err
	}

	pendingTotal := p.totalPrice
	pendingIDs := make([]int64, 0, len(pending))
	for _, order := range pending {
		pendingTotal = pendingTotal.Add(order.Price)
		pendingIDs = append(pendingIDs, order.ID)
	}

	order := &entity.Order{
		CustomerID: p.customerID,
		Price:      p.totalPrice,
		Quantity:   p.amount,
		Status:     entity.OrderStatusPending,
	}

	if pendingTotal.GreaterThanOrEqual(s.threshold) {
		// NOTE: the flushed job carries the aggregated notional as its
		// quantity, not an asset amount, while the large path sends the
		// asset amount. Downstream consumers depend on this shape.
		if err := queue.EnqueueBuy(ctx, p.asset, pendingTotal); err != nil {
			logrus.Error(err)
			return nil, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
		}

		if err := stores.Orders.MarkCompleted(ctx, pendingIDs); err != nil {
			logrus.Error(err)
			return nil, err
		}

		order.Status = entity.OrderStatusCompleted

		logrus.WithFields(logrus.Fields{
			"asset":         p.asset,
			"pending_total": pendingTotal,
			"flushed":       len(pendingIDs),
		}).Info("pending order batch flushed")
	}

	if err := stores.Orders.Create(ctx, order); err != nil {
		logrus.Error(err)
		return nil, err
	}

	return order, nil
}

// largeOrderStrategy executes immediately: one job for the requested asset
// amount, one order row created completed.
type largeOrderStrategy struct{}

func (largeOrderStrategy) execute(ctx context.Context, stores entity.TxStores, queue entity.ExchangeQueue, p placement) (*entity.Order, error) {
	if err := queue.EnqueueBuy(ctx, p.asset, p.amount); err != nil {
		logrus.Error(err)
		return nil, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	order := &entity.Order{
		CustomerID: p.customerID,
		Price:      p.totalPrice,
		Quantity:   p.amount,
		Status:     entity.OrderStatusCompleted,
	}

	if err := stores.Orders.Create(ctx, order); err != nil {
		logrus.Error(err)
		return nil, err
	}

	return order, nil
}
