package orderintake

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/krobus00/order-intake-service/internal/entity"
	"github.com/shopspring/decimal"
)

// memState is the shared backing state for the in-memory stores. The fake
// tx runner snapshots it before running a callback and restores it on
// error, mirroring a rolled-back transaction.
type memState struct {
	customers   map[int64]entity.Customer
	orders      []entity.Order
	nextOrderID int64
}

func newMemState() *memState {
	return &memState{
		customers:   make(map[int64]entity.Customer),
		nextOrderID: 1,
	}
}

func (s *memState) addCustomer(id int64, balance string) {
	s.customers[id] = entity.Customer{
		ID:      id,
		Name:    "customer",
		Balance: decimal.RequireFromString(balance),
	}
}

func (s *memState) addPendingOrder(customerID int64, price string) {
	s.orders = append(s.orders, entity.Order{
		ID:         s.nextOrderID,
		CustomerID: customerID,
		Price:      decimal.RequireFromString(price),
		Quantity:   decimal.RequireFromString(price),
		Status:     entity.OrderStatusPending,
	})
	s.nextOrderID++
}

func (s *memState) snapshot() *memState {
	customers := make(map[int64]entity.Customer, len(s.customers))
	for id, c := range s.customers {
		customers[id] = c
	}

	orders := make([]entity.Order, len(s.orders))
	copy(orders, s.orders)

	return &memState{
		customers:   customers,
		orders:      orders,
		nextOrderID: s.nextOrderID,
	}
}

func (s *memState) restore(snap *memState) {
	s.customers = snap.customers
	s.orders = snap.orders
	s.nextOrderID = snap.nextOrderID
}

func (s *memState) ordersByStatus(status entity.OrderStatus) []entity.Order {
	var out []entity.Order
	for _, o := range s.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

type memLedger struct {
	st *memState
}

func (l *memLedger) GetForUpdate(_ context.Context, customerID int64) (*entity.Customer, error) {
	customer, ok := l.st.customers[customerID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &customer, nil
}

func (l *memLedger) SetBalance(_ context.Context, customerID int64, balance decimal.Decimal) error {
	customer := l.st.customers[customerID]
	customer.Balance = balance
	l.st.customers[customerID] = customer
	return nil
}

type memOrders struct {
	st *memState
}

func (o *memOrders) LockPending(_ context.Context) ([]entity.Order, error) {
	pending := o.st.ordersByStatus(entity.OrderStatusPending)
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	return pending, nil
}

func (o *memOrders) MarkCompleted(_ context.Context, ids []int64) error {
	completed := make(map[int64]bool, len(ids))
	for _, id := range ids {
		completed[id] = true
	}

	for i := range o.st.orders {
		if completed[o.st.orders[i].ID] {
			o.st.orders[i].Status = entity.OrderStatusCompleted
		}
	}
	return nil
}

func (o *memOrders) Create(_ context.Context, order *entity.Order) error {
	order.ID = o.st.nextOrderID
	o.st.nextOrderID++
	o.st.orders = append(o.st.orders, *order)
	return nil
}

// memTxRunner serializes callbacks with a mutex, modeling the row locks
// and serializable isolation the real runner gets from Postgres.
type memTxRunner struct {
	mu sync.Mutex
	st *memState
}

func (r *memTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, stores entity.TxStores) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.st.snapshot()

	stores := entity.TxStores{
		Ledger: &memLedger{st: r.st},
		Orders: &memOrders{st: r.st},
	}

	if err := fn(ctx, stores); err != nil {
		r.st.restore(snap)
		return err
	}

	return nil
}

type enqueueCall struct {
	asset    string
	quantity decimal.Decimal
}

type recordingQueue struct {
	calls    []enqueueCall
	failWith error
}

func (q *recordingQueue) EnqueueBuy(_ context.Context, asset string, quantity decimal.Decimal) error {
	if q.failWith != nil {
		return q.failWith
	}

	q.calls = append(q.calls, enqueueCall{asset: asset, quantity: quantity})
	return nil
}
