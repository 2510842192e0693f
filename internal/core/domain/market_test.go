package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
)

func newTestMarket(t *testing.T) *domain.Market {
	t.Helper()

	market, err := domain.NewMarket(
		ticker,
		decimal.NewFromInt(50), decimal.NewFromInt(500),
		decimal.NewFromInt(5), decimal.NewFromInt(500),
	)
	require.NoError(t, err)
	return market
}

func TestNewMarket(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t)

	require.Equal(t, ticker, market.Ticker)
	require.True(t, market.Liquidity.IsPositive())
	require.True(t, market.BuyQuote.Available)
	require.True(t, market.SellQuote.Available)
	require.True(t, market.BuyQuote.Price.LessThanOrEqual(market.SellQuote.Price))
	require.True(t, market.SpotPrice().Equal(decimal.NewFromInt(10)))
}

func TestFailingNewMarket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		ticker        string
		baseReserve   int64
		quoteReserve  int64
		priceFloor    int64
		priceCeil     int64
		expectedError error
	}{
		{
			name:          "missing_ticker",
			baseReserve:   50,
			quoteReserve:  500,
			priceFloor:    5,
			priceCeil:     500,
			expectedError: domain.ErrMarketInvalidTicker,
		},
		{
			name:          "inverted_bounds",
			ticker:        ticker,
			baseReserve:   50,
			quoteReserve:  500,
			priceFloor:    500,
			priceCeil:     5,
			expectedError: domain.ErrMarketInvalidBounds,
		},
		{
			name:          "equal_bounds",
			ticker:        ticker,
			baseReserve:   50,
			quoteReserve:  500,
			priceFloor:    10,
			priceCeil:     10,
			expectedError: domain.ErrMarketInvalidBounds,
		},
		{
			name:          "negative_reserve",
			ticker:        ticker,
			baseReserve:   -1,
			quoteReserve:  500,
			priceFloor:    5,
			priceCeil:     500,
			expectedError: domain.ErrMarketInvalidReserves,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := domain.NewMarket(
				tt.ticker,
				decimal.NewFromInt(tt.baseReserve),
				decimal.NewFromInt(tt.quoteReserve),
				decimal.NewFromInt(tt.priceFloor),
				decimal.NewFromInt(tt.priceCeil),
			)
			require.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestApplyTrade(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t)
	ask := market.SellQuote.Price

	// A taker buys one share at the ask: reserves move, quotes shift up.
	err := market.ApplyTrade(-1, ask)
	require.NoError(t, err)
	require.True(t, market.BaseReserve.Equal(decimal.NewFromInt(49)))
	require.True(t, market.QuoteReserve.Equal(decimal.NewFromInt(500).Add(ask)))
	require.True(t, market.SellQuote.Price.GreaterThanOrEqual(ask))

	// Draining more shares than the reserve holds is rejected untouched.
	before := *market
	err = market.ApplyTrade(-50, decimal.NewFromInt(1000))
	require.ErrorIs(t, err, domain.ErrMarketInvalidReserves)
	require.Equal(t, before, *market)
}

func TestRequoteMarksUnavailableSides(t *testing.T) {
	t.Parallel()

	market, err := domain.NewMarket(
		ticker,
		decimal.Zero, decimal.NewFromInt(500),
		decimal.NewFromInt(5), decimal.NewFromInt(500),
	)
	require.NoError(t, err)

	require.False(t, market.SellQuote.Available)
	require.True(t, market.BuyQuote.Available)
	require.True(t, market.SpotPrice().IsZero())
}

func TestCreditReserve(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t)
	quotes := market.SellQuote

	market.CreditReserve(decimal.RequireFromString("0.05"))

	// The tax credit moves cash only; quotes refresh on the next trade.
	require.True(t, market.QuoteReserve.Equal(decimal.RequireFromString("500.05")))
	require.Equal(t, quotes, market.SellQuote)
}
