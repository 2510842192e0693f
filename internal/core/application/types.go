package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
)

// OrderRequest is an inbound order as submitted by a client.
type OrderRequest struct {
	Ticker string
	Side   string
	// Quantity is ignored for market execution, which always trades 1 unit.
	Quantity int64
	// Price is the limit price, or for market execution the client's view of
	// the best opposite price, rechecked against the book.
	Price     decimal.Decimal
	Owner     string
	Execution string
}

// CancelRequest removes resting quantity at a price for an owner and refunds
// the escrowed funds or inventory.
type CancelRequest struct {
	Ticker   string
	Side     string
	Quantity int64
	Price    decimal.Decimal
	Owner    string
}

// Fill is one matched counterparty of a matching step.
type Fill struct {
	Ticker   string          `json:"ticker"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Taker    string          `json:"taker"`
	Maker    string          `json:"maker"`
}

// OrderResult reports what a PlaceOrder call did.
type OrderResult struct {
	Fills []Fill `json:"fills,omitempty"`
	// FilledQuantity is the total quantity matched across all fills.
	FilledQuantity int64 `json:"filledQuantity"`
	// RestingOrderID is set when a remainder was posted to the book.
	RestingOrderID  string `json:"restingOrderId,omitempty"`
	RestingQuantity int64  `json:"restingQuantity,omitempty"`
	// SelfTradeCancelled is the resting quantity cancelled and refunded
	// because the taker crossed their own order.
	SelfTradeCancelled int64 `json:"selfTradeCancelled,omitempty"`
}

// Quotes is the published top-of-book view of a ticker: the buy quote is the
// best resting sell price (what a buyer would pay) and vice versa. A nil
// price means that side is empty.
type Quotes struct {
	Ticker    string           `json:"ticker"`
	BuyQuote  *decimal.Decimal `json:"buyQuote"`
	SellQuote *decimal.Decimal `json:"sellQuote"`
	Timestamp time.Time        `json:"timestamp"`
}

// BalanceEvent notifies a cash balance change.
type BalanceEvent struct {
	UserID  string          `json:"userId"`
	Balance decimal.Decimal `json:"balance"`
}

// InventoryEvent notifies a share inventory change.
type InventoryEvent struct {
	UserID    string           `json:"userId"`
	Inventory map[string]int64 `json:"inventory"`
}

// MarketInfo is the operator view of a market.
type MarketInfo struct {
	Ticker       string          `json:"ticker"`
	BaseReserve  decimal.Decimal `json:"baseReserve"`
	QuoteReserve decimal.Decimal `json:"quoteReserve"`
	PriceFloor   decimal.Decimal `json:"priceFloor"`
	PriceCeil    decimal.Decimal `json:"priceCeil"`
	Liquidity    decimal.Decimal `json:"liquidity"`
	SpotPrice    decimal.Decimal `json:"spotPrice"`
	BuyQuote     domain.Quote    `json:"buyQuote"`
	SellQuote    domain.Quote    `json:"sellQuote"`
}

// AccountInfo is the operator view of an account.
type AccountInfo struct {
	ID        string           `json:"id"`
	Balance   decimal.Decimal  `json:"balance"`
	Inventory map[string]int64 `json:"inventory"`
}
