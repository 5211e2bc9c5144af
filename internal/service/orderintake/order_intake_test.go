package orderintake

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/krobus00/order-intake-service/internal/config"
	"github.com/krobus00/order-intake-service/internal/entity"
	"github.com/shopspring/decimal"
)

func newTestService(st *memState, queue *recordingQueue) *OrderIntakeService {
	return NewOrderIntakeService(&memTxRunner{st: st}, queue, config.OrderConfig{
		PurchaseThreshold: decimal.RequireFromString("10"),
		UnitPrice:         decimal.RequireFromString("1"),
	})
}

func TestPlaceOrder_InvalidAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newMemState()
			st.addCustomer(1, "50")

			svc := newTestService(st, &recordingQueue{})

			_, err := svc.PlaceOrder(context.Background(), 1, "ABAN", decimal.RequireFromString(tt.amount))
			if !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("PlaceOrder error = %v, want ErrInvalidAmount", err)
			}
			if len(st.orders) != 0 {
				t.Errorf("order rows = %d, want 0", len(st.orders))
			}
		})
	}
}

func TestPlaceOrder_CustomerNotFound(t *testing.T) {
	st := newMemState()
	svc := newTestService(st, &recordingQueue{})

	_, err := svc.PlaceOrder(context.Background(), 42, "ABAN", decimal.RequireFromString("1"))
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Errorf("PlaceOrder error = %v, want ErrCustomerNotFound", err)
	}
}

func TestPlaceOrder_InsufficientBalance(t *testing.T) {
	st := newMemState()
	st.addCustomer(1, "10")
	queue := &recordingQueue{}
	svc := newTestService(st, queue)

	_, err := svc.PlaceOrder(context.Background(), 1, "ABAN", decimal.RequireFromString("10.01"))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("PlaceOrder error = %v, want ErrInsufficientBalance", err)
	}

	if !st.customers[1].Balance.Equal(decimal.RequireFromString("10")) {
		t.Errorf("balance = %s, want unchanged 10", st.customers[1].Balance)
	}
	if len(st.orders) != 0 {
		t.Errorf("order rows = %d, want 0", len(st.orders))
	}
	if len(queue.calls) != 0 {
		t.Errorf("enqueue calls = %d, want 0", len(queue.calls))
	}
}

// Balance exactly equal to the total price is sufficient; only a strictly
// smaller balance is rejected.
func TestPlaceOrder_BalanceExactlyEqual(t *testing.T) {
	st := newMemState()
	st.addCustomer(1, "10")
	svc := newTestService(st, &recordingQueue{})

	_, err := svc.PlaceOrder(context.Background(), 1, "ABAN", decimal.RequireFromString("10"))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if !st.customers[1].Balance.IsZero() {
		t.Errorf("balance = %s, want 0", st.customers[1].Balance)
	}
}

func TestPlaceOrder_ExactDebit(t *testing.T) {
	st := newMemState()
	st.addCustomer(1, "50")
	svc := NewOrderIntakeService(&memTxRunner{st: st}, &recordingQueue{}, config.OrderConfig{
		PurchaseThreshold: decimal.RequireFromString("100"),
		UnitPrice:         decimal.RequireFromString("2.5"),
	})

	result, err := svc.PlaceOrder(context.Background(), 1, "ABAN", decimal.RequireFromString("3.2"))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if result.Message != "Purchase order registered successfully." {
		t.Errorf("message = %q", result.Message)
	}
	// 50 - 3.2*2.5 = 42, no rounding drift.
	if !st.customers[1].Balance.Equal(decimal.RequireFromString("42")) {
		t.Errorf("balance = %s, want 42", st.customers[1].Balance)
	}
	if !result.Order.Price.Equal(decimal.RequireFromString("8")) {
		t.Errorf("order price = %s, want 8", result.Order.Price)
	}
}

// The concrete batching scenario: threshold 10, unit price 1, balance 50.
// Orders of 2 and 3 stay pending; the order of 6 pushes the pool to 11,
// flushing everything as one job sized 11 and leaving balance 39.
func TestPlaceOrder_ThresholdSequence(t *testing.T) {
	st := newMemState()
	st.addCustomer(1, "50")
	queue := &recordingQueue{}
	svc := newTestService(st, queue)

	for _, amount := range []string{"2", "3"} {
		result, err := svc.PlaceOrder(context.Background(), 1, "ABAN", decimal.RequireFromString(amount))
		if err != nil {
			t.Fatalf("PlaceOrder(%s): %v", amount, err)
		}
		if result.Order.Status != entity.OrderStatusPending {
			t.Errorf("order(%s) status = %s, want pending", amount, result.Order.Status)
		}
	}

	if len(queue.calls) != 0 {
		t.Fatalf("enqueue calls before flush = %d, want 0", len(queue.calls))
	}
	if got := len(st.ordersByStatus(entity.OrderStatusCompleted)); got != 0 {
		t.Fatalf("completed rows before flush = %d, want 0", got)
	}

	result, err := svc.PlaceOrder(context.Background(), 1, "ABAN", decimal.RequireFromString("6"))
	if err != nil {
		t.Fatalf("PlaceOrder(6): %v", err)
	}

	if result.Order.Status != entity.OrderStatusCompleted {
		t.Errorf("triggering order status = %s, want completed", result.Order.Status)
	}
	if len(queue.calls) != 1 {
		t.Fatalf("enqueue calls = %d, want 1", len(queue.calls))
	}
	if !queue.calls[0].quantity.Equal(decimal.RequireFromString("11")) {
		t.Errorf("enqueued quantity = %s, want 11", queue.calls[0].quantity)
	}
	if got := len(st.ordersByStatus(entity.OrderStatusPending)); got != 0 {
		t.Errorf("pending rows = %d, want 0", got)
	}
	if got := len(st.ordersByStatus(entity.OrderStatusCompleted)); got != 3 {
		t.Errorf("completed rows = %d, want 3", got)
	}
	if !st.customers[1].Balance.Equal(decimal.RequireFromString("39")) {
		t.Errorf("balance = %s, want 39", st.customers[1].Balance)
	}
}

func TestPlaceOrder_LargeOrderIgnoresPendingPool(t *testing.T) {
	st := newMemState()
	st.addCustomer(1, "50")
	st.addPendingOrder(2, "4")
	queue := &recordingQueue{}
	svc := newTestService(st, queue)

	result, err := svc.PlaceOrder(context.Background(), 1, "ABAN", decimal.RequireFromString("12"))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if result.Order.Status != entity.OrderStatusCompleted {
		t.Errorf("order status = %s, want completed", result.Order.Status)
	}
	if len(queue.calls) != 1 {
		t.Fatalf("enqueue calls = %d, want 1", len(queue.calls))
	}
	if !queue.calls[0].quantity.Equal(decimal.RequireFromString("12")) {
		t.Errorf("enqueued quantity = %s, want the asset amount 12", queue.calls[0].quantity)
	}
	if got := len(st.ordersByStatus(entity.OrderStatusPending)); got != 1 {
		t.Errorf("unrelated pending rows = %d, want 1", got)
	}
}

// Two small orders racing over a pool that is one order short of the
// threshold: whichever transaction commits first sees the pool at 9,
// flushes 9+5=14 and empties it; the loser re-reads an empty pool and its
// order of 5 stays pending. Exactly one job leaves, sized 14, and no
// pending row is flushed twice.
func TestPlaceOrder_ConcurrentSmallOrdersFlushOnce(t *testing.T) {
	st := newMemState()
	st.addCustomer(1, "50")
	st.addCustomer(2, "50")
	st.addPendingOrder(1, "9")
	queue := &recordingQueue{}
	svc := newTestService(st, queue)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, customerID := range []int64{1, 2} {
		wg.Add(1)
		go func(i int, customerID int64) {
			defer wg.Done()
			_, errs[i] = svc.PlaceOrder(context.Background(), customerID, "ABAN", decimal.RequireFromString("5"))
		}(i, customerID)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("PlaceOrder #%d: %v", i, err)
		}
	}

	if len(queue.calls) != 1 {
		t.Fatalf("enqueue calls = %d, want exactly 1", len(queue.calls))
	}
	if !queue.calls[0].quantity.Equal(decimal.RequireFromString("14")) {
		t.Errorf("enqueued quantity = %s, want 14", queue.calls[0].quantity)
	}
	if got := len(st.ordersByStatus(entity.OrderStatusCompleted)); got != 2 {
		t.Errorf("completed rows = %d, want 2", got)
	}
	if got := len(st.ordersByStatus(entity.OrderStatusPending)); got != 1 {
		t.Errorf("pending rows = %d, want 1 (the loser's order)", got)
	}
}

func TestPlaceOrder_DispatchFailureRollsBackEverything(t *testing.T) {
	st := newMemState()
	st.addCustomer(1, "50")
	st.addPendingOrder(1, "9")
	queue := &recordingQueue{failWith: errors.New("queue unavailable")}
	svc := newTestService(st, queue)

	_, err := svc.PlaceOrder(context.Background(), 1, "ABAN", decimal.RequireFromString("5"))
	if !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("PlaceOrder error = %v, want ErrDispatchFailed", err)
	}

	if !st.customers[1].Balance.Equal(decimal.RequireFromString("50")) {
		t.Errorf("balance = %s, want rolled back to 50", st.customers[1].Balance)
	}
	if got := len(st.ordersByStatus(entity.OrderStatusPending)); got != 1 {
		t.Errorf("pending rows = %d, want 1 untouched", got)
	}
	if got := len(st.orders); got != 1 {
		t.Errorf("order rows = %d, want 1", got)
	}
}
