package formula_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	mm "github.com/stocksim-network/stocksim-daemon/pkg/marketmaking"
	"github.com/stocksim-network/stocksim-daemon/pkg/marketmaking/formula"
)

// Reference fixture: spot price 10, bounds at price/100 and price*100.
func fixtureOpts() mm.FormulaOpts {
	return mm.FormulaOpts{
		BaseReserve:  decimal.NewFromInt(50),
		QuoteReserve: decimal.NewFromInt(500),
		PriceFloor:   decimal.NewFromInt(5),
		PriceCeil:    decimal.NewFromInt(500),
	}
}

func TestLiquidityMatchesClosedForm(t *testing.T) {
	t.Parallel()

	f := formula.NewConcentratedLiquidity()
	opts := fixtureOpts()

	liquidity, err := f.Liquidity(opts)
	require.NoError(t, err)

	pa, pb, x, y := 5.0, 500.0, 50.0, 500.0
	paSq, pbSq := math.Sqrt(pa), math.Sqrt(pb)
	part1 := pa*pb*x*x - 2*paSq*pbSq*x*y + 4*pb*x*y + y*y
	part2 := paSq*pbSq*x + y
	expected := -(math.Sqrt(part1) + part2) / (2*paSq - 2*pbSq)

	got, _ := liquidity.Float64()
	require.InDelta(t, expected, got, 1e-6)
	require.True(t, liquidity.IsPositive())
}

func TestLiquidityInvalidBounds(t *testing.T) {
	t.Parallel()

	f := formula.NewConcentratedLiquidity()

	tests := []struct {
		name   string
		floor  int64
		ceil   int64
		expErr error
	}{
		{"equal_bounds", 10, 10, formula.ErrInvalidBounds},
		{"inverted_bounds", 500, 5, formula.ErrInvalidBounds},
		{"zero_floor", 0, 500, formula.ErrInvalidBounds},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := fixtureOpts()
			opts.PriceFloor = decimal.NewFromInt(tt.floor)
			opts.PriceCeil = decimal.NewFromInt(tt.ceil)
			_, err := f.Liquidity(opts)
			require.ErrorIs(t, err, tt.expErr)
		})
	}
}

func TestUnitPriceSpread(t *testing.T) {
	t.Parallel()

	f := formula.NewConcentratedLiquidity()
	opts := fixtureOpts()

	bid, err := f.UnitPrice(opts, mm.TradeBuy)
	require.NoError(t, err)
	ask, err := f.UnitPrice(opts, mm.TradeSell)
	require.NoError(t, err)

	// Bid rounds down, ask rounds up: the implied spread is never negative.
	require.True(t, bid.LessThanOrEqual(ask))
	require.True(t, bid.IsPositive())

	// Both quotes stay within the configured curve bounds.
	require.True(t, bid.GreaterThanOrEqual(opts.PriceFloor))
	require.True(t, ask.LessThanOrEqual(opts.PriceCeil))

	// Quotes are priced around the spot price of 10.
	spot, err := f.SpotPrice(opts)
	require.NoError(t, err)
	require.True(t, spot.Equal(decimal.NewFromInt(10)))
	require.True(t, bid.LessThanOrEqual(spot))
	require.True(t, ask.GreaterThanOrEqual(spot.Sub(decimal.NewFromInt(1))))
}

func TestConstantProductInvariant(t *testing.T) {
	t.Parallel()

	f := formula.NewConcentratedLiquidity()
	opts := fixtureOpts()

	liquidity, err := f.Liquidity(opts)
	require.NoError(t, err)
	virtualBase, virtualQuote := f.VirtualReserves(
		liquidity, opts.PriceFloor, opts.PriceCeil,
	)

	vx, _ := virtualBase.Float64()
	vy, _ := virtualQuote.Float64()
	x, _ := opts.BaseReserve.Float64()
	y, _ := opts.QuoteReserve.Float64()
	kBefore := (x + vx) * (y + vy)

	// The maker sells one share at its ask: x decreases, y grows by the quote.
	ask, err := f.UnitPrice(opts, mm.TradeSell)
	require.NoError(t, err)
	askF, _ := ask.Float64()
	kAfter := (x - 1 + vx) * (y + askF + vy)

	// The quote is rounded to the cent, so K drifts by at most one cent of
	// the total base reserve.
	require.InDelta(t, kBefore, kAfter, 0.01*(x+vx)+1e-6)
}

func TestUnitPriceUnavailableSides(t *testing.T) {
	t.Parallel()

	f := formula.NewConcentratedLiquidity()

	t.Run("sell_side_without_shares", func(t *testing.T) {
		t.Parallel()

		opts := fixtureOpts()
		opts.BaseReserve = decimal.Zero
		_, err := f.UnitPrice(opts, mm.TradeSell)
		require.ErrorIs(t, err, formula.ErrEmptyShareReserve)
	})

	t.Run("buy_side_without_cash", func(t *testing.T) {
		t.Parallel()

		opts := fixtureOpts()
		opts.QuoteReserve = decimal.Zero
		_, err := f.UnitPrice(opts, mm.TradeBuy)
		require.ErrorIs(t, err, formula.ErrEmptyCashReserve)
	})
}
