package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/krobus00/order-intake-service/internal/service/orderintake"
	"github.com/shopspring/decimal"
)

type PlaceOrderRequest struct {
	CustomerID int64       `json:"customer_id"`
	Crypto     string      `json:"crypto"`
	Amount     json.Number `json:"amount"`
}

type PlaceOrderResponse struct {
	Message string `json:"message"`
}

type Handler struct {
	orderIntakeService *orderintake.OrderIntakeService
}

func NewOrderIntakeHTTPHandler(orderIntakeService *orderintake.OrderIntakeService) *Handler {
	return &Handler{orderIntakeService: orderIntakeService}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/order-intake/v1/orders", h.PlaceOrder)
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	defer r.Body.Close()

	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return
	}

	if req.CustomerID <= 0 || strings.TrimSpace(req.Crypto) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing required fields"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid amount"})
		return
	}

	result, err := h.orderIntakeService.PlaceOrder(r.Context(), req.CustomerID, strings.TrimSpace(req.Crypto), amount)
	if err != nil {
		switch {
		case errors.Is(err, orderintake.ErrInsufficientBalance):
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Insufficient account balance."})
		case errors.Is(err, orderintake.ErrCustomerNotFound):
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "customer not found"})
		case errors.Is(err, orderintake.ErrInvalidAmount):
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid amount"})
		case errors.Is(err, orderintake.ErrDispatchFailed):
			writeJSON(w, http.StatusBadGateway, map[string]any{"error": "failed to dispatch exchange job"})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, PlaceOrderResponse{Message: result.Message})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
