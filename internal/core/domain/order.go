package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a resting limit order on one side of a ticker's book.
type Order struct {
	ID       string          `json:"id"`
	Ticker   string          `json:"ticker"`
	Side     Side            `json:"side"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Owner    Counterparty    `json:"owner"`
	// CreatedAt breaks price ties: oldest first.
	CreatedAt time.Time `json:"createdAt"`
}

// NewOrder returns a resting order stamped with a fresh id and the current
// time.
func NewOrder(
	ticker string, side Side, quantity int64,
	price decimal.Decimal, owner Counterparty,
) Order {
	return Order{
		ID:        uuid.New().String(),
		Ticker:    ticker,
		Side:      side,
		Quantity:  quantity,
		Price:     price,
		Owner:     owner,
		CreatedAt: time.Now().UTC(),
	}
}
