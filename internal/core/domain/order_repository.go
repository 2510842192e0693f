package domain

import "context"

// OrderRepository is the abstraction for any kind of database intended to
// persist the per-(ticker, side) resting order books.
type OrderRepository interface {
	// GetBook returns the resting book for a ticker and side, empty when
	// nothing rests yet.
	GetBook(ctx context.Context, ticker string, side Side) (*OrderBook, error)
	// UpdateBook commits the changes made by updateFn to the book in an
	// atomic read-modify-write.
	UpdateBook(
		ctx context.Context, ticker string, side Side,
		updateFn func(b *OrderBook) (*OrderBook, error),
	) error
	// GetOrdersForOwner returns every resting order of an owner across all
	// books, for display and bulk cancellation.
	GetOrdersForOwner(ctx context.Context, owner Counterparty) ([]Order, error)
}
