package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/krobus00/order-intake-service/internal/entity"
	"github.com/shopspring/decimal"
)

// defaultBalance is the opening balance granted to new customers.
var defaultBalance = decimal.NewFromFloat(100.00)

type CustomerStore interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id int64) (*entity.Customer, error)
	List(ctx context.Context) ([]entity.Customer, error)
}

type OrderReader interface {
	ListByCustomer(ctx context.Context, customerID int64) ([]entity.Order, error)
}

type WalletStore interface {
	Create(ctx context.Context, wallet *entity.Wallet) error
	ListByCustomer(ctx context.Context, customerID int64) ([]entity.Wallet, error)
}

type CreateCustomerRequest struct {
	Name    string      `json:"name"`
	Balance json.Number `json:"balance"`
}

type Handler struct {
	customers CustomerStore
	orders    OrderReader
	wallets   WalletStore
}

func NewCustomerHTTPHandler(customers CustomerStore, orders OrderReader, wallets WalletStore) *Handler {
	return &Handler{
		customers: customers,
		orders:    orders,
		wallets:   wallets,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/order-intake/v1/customers", h.Customers)
	mux.HandleFunc("/order-intake/v1/customers/{id}/orders", h.CustomerOrders)
	mux.HandleFunc("/order-intake/v1/customers/{id}/wallets", h.CustomerWallets)
}

func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listCustomers(w, r)
	case http.MethodPost:
		h.createCustomer(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, customers)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing required fields"})
		return
	}

	balance := defaultBalance
	if req.Balance.String() != "" {
		parsed, err := decimal.NewFromString(req.Balance.String())
		if err != nil || parsed.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid balance"})
			return
		}
		balance = parsed
	}

	customer := &entity.Customer{
		Name:    strings.TrimSpace(req.Name),
		Balance: balance,
	}

	if err := h.customers.Create(r.Context(), customer); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		return
	}

	// Every customer starts with an empty asset wallet; settlement credits
	// it once exchange jobs complete.
	wallet := &entity.Wallet{
		CustomerID: customer.ID,
		Balance:    decimal.Zero,
	}
	if err := h.wallets.Create(r.Context(), wallet); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, customer)
}

func (h *Handler) CustomerOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	customerID, ok := h.resolveCustomerID(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListByCustomer(r.Context(), customerID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) CustomerWallets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	customerID, ok := h.resolveCustomerID(w, r)
	if !ok {
		return
	}

	wallets, err := h.wallets.ListByCustomer(r.Context(), customerID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, wallets)
}

// resolveCustomerID parses the path id and verifies the customer exists.
func (h *Handler) resolveCustomerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	customerID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || customerID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid customer id"})
		return 0, false
	}

	_, err = h.customers.GetByID(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "customer not found"})
			return 0, false
		}

		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		return 0, false
	}

	return customerID, true
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
