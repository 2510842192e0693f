package domain

import "context"

// MarketRepository is the abstraction for any kind of database intended to
// persist Markets.
type MarketRepository interface {
	// AddMarket adds a new market, failing if the ticker is taken.
	AddMarket(ctx context.Context, market *Market) error
	// GetMarket returns the market for a ticker.
	GetMarket(ctx context.Context, ticker string) (*Market, error)
	// GetAllMarkets returns every provisioned market.
	GetAllMarkets(ctx context.Context) ([]Market, error)
	// UpdateMarket commits the changes made by updateFn to the market in an
	// atomic read-modify-write.
	UpdateMarket(
		ctx context.Context, ticker string,
		updateFn func(m *Market) (*Market, error),
	) error
}
