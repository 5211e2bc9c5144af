package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/krobus00/order-intake-service/internal/entity"
	"github.com/shopspring/decimal"
)

type memStore struct {
	customers map[int64]entity.Customer
	orders    map[int64][]entity.Order
	wallets   map[int64][]entity.Wallet
	nextID    int64
}

func newMemStore() *memStore {
	return &memStore{
		customers: make(map[int64]entity.Customer),
		orders:    make(map[int64][]entity.Order),
		wallets:   make(map[int64][]entity.Wallet),
		nextID:    1,
	}
}

func (s *memStore) Create(_ context.Context, customer *entity.Customer) error {
	customer.ID = s.nextID
	s.nextID++
	s.customers[customer.ID] = *customer
	return nil
}

func (s *memStore) GetByID(_ context.Context, id int64) (*entity.Customer, error) {
	customer, ok := s.customers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &customer, nil
}

func (s *memStore) List(_ context.Context) ([]entity.Customer, error) {
	out := make([]entity.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	return out, nil
}

func (s *memStore) ListByCustomer(_ context.Context, customerID int64) ([]entity.Order, error) {
	return s.orders[customerID], nil
}

type walletStore struct {
	st *memStore
}

func (w *walletStore) Create(_ context.Context, wallet *entity.Wallet) error {
	wallet.ID = w.st.nextID
	w.st.nextID++
	w.st.wallets[wallet.CustomerID] = append(w.st.wallets[wallet.CustomerID], *wallet)
	return nil
}

func (w *walletStore) ListByCustomer(_ context.Context, customerID int64) ([]entity.Wallet, error) {
	return w.st.wallets[customerID], nil
}

func newTestMux(st *memStore) *http.ServeMux {
	mux := http.NewServeMux()
	NewCustomerHTTPHandler(st, st, &walletStore{st: st}).Register(mux)
	return mux
}

func TestCreateCustomer(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantBalance string
	}{
		{"explicit balance", `{"name": "john", "balance": 25.50}`, http.StatusCreated, "25.5"},
		{"default balance", `{"name": "john"}`, http.StatusCreated, "100"},
		{"missing name", `{"balance": 10}`, http.StatusBadRequest, ""},
		{"negative balance", `{"name": "john", "balance": -5}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newMemStore()
			mux := newTestMux(st)

			req := httptest.NewRequest(http.MethodPost, "/order-intake/v1/customers", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}

			if tt.wantStatus != http.StatusCreated {
				return
			}

			var created entity.Customer
			if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}
			if !created.Balance.Equal(decimal.RequireFromString(tt.wantBalance)) {
				t.Errorf("balance = %s, want %s", created.Balance, tt.wantBalance)
			}
		})
	}
}

func TestCreateCustomer_OpensEmptyWallet(t *testing.T) {
	st := newMemStore()
	mux := newTestMux(st)

	req := httptest.NewRequest(http.MethodPost, "/order-intake/v1/customers", strings.NewReader(`{"name": "john"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	var created entity.Customer
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	wallets := st.wallets[created.ID]
	if len(wallets) != 1 {
		t.Fatalf("wallets = %d, want 1", len(wallets))
	}
	if !wallets[0].Balance.IsZero() {
		t.Errorf("wallet balance = %s, want 0", wallets[0].Balance)
	}
}

func TestCustomerOrders_NotFound(t *testing.T) {
	mux := newTestMux(newMemStore())

	req := httptest.NewRequest(http.MethodGet, "/order-intake/v1/customers/9/orders", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCustomerWallets(t *testing.T) {
	st := newMemStore()
	st.customers[1] = entity.Customer{ID: 1, Name: "john", Balance: decimal.RequireFromString("50")}
	st.wallets[1] = []entity.Wallet{{ID: 1, CustomerID: 1, Balance: decimal.RequireFromString("0.5")}}
	mux := newTestMux(st)

	req := httptest.NewRequest(http.MethodGet, "/order-intake/v1/customers/1/wallets", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var wallets []entity.Wallet
	if err := json.Unmarshal(rec.Body.Bytes(), &wallets); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(wallets) != 1 || !wallets[0].Balance.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("wallets = %+v", wallets)
	}
}
