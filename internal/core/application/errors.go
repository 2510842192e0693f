package application

import "errors"

var (
	// ErrTradeNoLiquidity is thrown when a market order finds the opposite
	// book empty. A requote is published so the caller can retry.
	ErrTradeNoLiquidity = errors.New("no liquidity on the opposite book")
	// ErrTradePriceStale is thrown when the price a market order was
	// submitted with no longer matches the best of book. A requote is
	// published so the caller can retry with fresh data.
	ErrTradePriceStale = errors.New("submitted price no longer matches the book")
)
