package entity

import "github.com/shopspring/decimal"

// BuyOrderEvent is the payload published to the exchange stream. Quantity
// carries whatever the dispatching strategy decided to send: the asset
// amount for large orders, the aggregated notional for batch flushes.
type BuyOrderEvent struct {
	RetryCount  int             `json:"retry"`
	RequestID   string          `json:"request_id"`
	Asset       string          `json:"asset"`
	Quantity    decimal.Decimal `json:"quantity"`
	RequestedAt int64           `json:"requested_at"`
}
