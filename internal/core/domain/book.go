package domain

import (
	"github.com/shopspring/decimal"
)

// OrderBook is the resting queue for one (ticker, side). Orders are kept
// sorted by price priority at all times (buys descending, sells ascending),
// FIFO among equal prices.
type OrderBook struct {
	Ticker string  `json:"ticker"`
	Side   Side    `json:"side"`
	Orders []Order `json:"orders"`
}

// NewOrderBook returns an empty book for the given ticker and side.
func NewOrderBook(ticker string, side Side) *OrderBook {
	return &OrderBook{Ticker: ticker, Side: side}
}

// Insert places the order at the first position whose price is strictly
// worse, appending if none is. This keeps strict price priority with FIFO
// among equal prices.
func (b *OrderBook) Insert(order Order) {
	at := len(b.Orders)
	for i, resting := range b.Orders {
		if b.worse(resting.Price, order.Price) {
			at = i
			break
		}
	}
	b.Orders = append(b.Orders, Order{})
	copy(b.Orders[at+1:], b.Orders[at:])
	b.Orders[at] = order
}

// Best returns a copy of the head of the queue.
func (b *OrderBook) Best() (Order, bool) {
	if len(b.Orders) == 0 {
		return Order{}, false
	}
	return b.Orders[0], true
}

// IsEmpty reports whether no order is resting.
func (b *OrderBook) IsEmpty() bool {
	return len(b.Orders) == 0
}

// Consume removes up to quantity from the front orders resting exactly at
// price, dropping entries that reach zero, and returns how much was
// actually consumed. It stops as soon as the head price no longer matches.
func (b *OrderBook) Consume(price decimal.Decimal, quantity int64) int64 {
	var consumed int64
	for quantity > consumed && len(b.Orders) > 0 {
		head := &b.Orders[0]
		if !head.Price.Equal(price) {
			break
		}
		take := quantity - consumed
		if take > head.Quantity {
			take = head.Quantity
		}
		head.Quantity -= take
		consumed += take
		if head.Quantity == 0 {
			b.Orders = b.Orders[1:]
		}
	}
	return consumed
}

// Reduce removes up to quantity from the first resting order owned by owner
// at the given price and returns how much was removed. Zero means no match.
func (b *OrderBook) Reduce(
	owner Counterparty, price decimal.Decimal, quantity int64,
) int64 {
	for i := range b.Orders {
		resting := &b.Orders[i]
		if resting.Owner != owner || !resting.Price.Equal(price) {
			continue
		}
		removed := quantity
		if removed > resting.Quantity {
			removed = resting.Quantity
		}
		resting.Quantity -= removed
		if resting.Quantity == 0 {
			b.Orders = append(b.Orders[:i], b.Orders[i+1:]...)
		}
		return removed
	}
	return 0
}

// CancelAll removes every order owned by owner and returns them in book
// order, so the caller can refund the escrowed funds or inventory.
func (b *OrderBook) CancelAll(owner Counterparty) []Order {
	var removed []Order
	kept := b.Orders[:0]
	for _, resting := range b.Orders {
		if resting.Owner == owner {
			removed = append(removed, resting)
			continue
		}
		kept = append(kept, resting)
	}
	b.Orders = kept
	return removed
}

// worse reports whether a resting price has strictly lower priority than the
// incoming one on this side of the book.
func (b *OrderBook) worse(resting, incoming decimal.Decimal) bool {
	if b.Side == SideBuy {
		return resting.LessThan(incoming)
	}
	return resting.GreaterThan(incoming)
}
