// Package formula implements the bonded-curve pricing formulas used by the
// automated market maker.
package formula

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	mm "github.com/stocksim-network/stocksim-daemon/pkg/marketmaking"
	"github.com/stocksim-network/stocksim-daemon/pkg/mathutil"
)

var (
	// ErrInvalidBounds is thrown when the upper price bound does not
	// strictly exceed the lower one.
	ErrInvalidBounds = errors.New("price bounds must satisfy Pb > Pa > 0")
	// ErrInvalidReserves is thrown when a reserve amount is negative.
	ErrInvalidReserves = errors.New("reserves must not be negative")
	// ErrEmptyShareReserve is thrown when a sell quote is requested but the
	// curve holds no shares to price it against.
	ErrEmptyShareReserve = errors.New("share reserve is empty, sell side unavailable")
	// ErrEmptyCashReserve is thrown when the buy quote would exceed the cash
	// held by the curve.
	ErrEmptyCashReserve = errors.New("cash reserve too low, buy side unavailable")
)

// ConcentratedLiquidity prices 1-unit trades on a constant-product curve
// extended with virtual reserves, so that the marginal price stays within the
// configured [Pa, Pb] bounds. The asymmetric rounding of UnitPrice (buy down,
// sell up) is the maker's bid/ask spread.
type ConcentratedLiquidity struct{}

// NewConcentratedLiquidity returns the bounded constant-product formula.
func NewConcentratedLiquidity() mm.MakingFormula {
	return ConcentratedLiquidity{}
}

// Liquidity solves the constant-product equation extended with virtual
// reserves for the liquidity constant L, such that the curve passes through
// the real reserves (x, y) with asymptotes at Pa and Pb:
//
//	L = -(sqrt(Pa*Pb*x^2 - 2*sqrt(Pa*Pb)*x*y + 4*Pb*x*y + y^2) + sqrt(Pa*Pb)*x + y) / (2*sqrt(Pa) - 2*sqrt(Pb))
func (ConcentratedLiquidity) Liquidity(opts mm.FormulaOpts) (decimal.Decimal, error) {
	if err := validateOpts(opts); err != nil {
		return decimal.Zero, err
	}

	pa, _ := opts.PriceFloor.Float64()
	pb, _ := opts.PriceCeil.Float64()
	x, _ := opts.BaseReserve.Float64()
	y, _ := opts.QuoteReserve.Float64()

	paSq := math.Sqrt(pa)
	pbSq := math.Sqrt(pb)

	part1 := pa*pb*x*x - 2*paSq*pbSq*x*y + 4*pb*x*y + y*y
	part2 := paSq*pbSq*x + y

	l := -(math.Sqrt(part1) + part2) / (2*paSq - 2*pbSq)

	return decimal.NewFromFloat(l), nil
}

// VirtualReserves derives the reserve offsets keeping the curve inside its
// price bounds: virtualX = L/sqrt(Pb), virtualY = L*sqrt(Pa).
func (ConcentratedLiquidity) VirtualReserves(
	liquidity, priceFloor, priceCeil decimal.Decimal,
) (decimal.Decimal, decimal.Decimal) {
	l, _ := liquidity.Float64()
	pa, _ := priceFloor.Float64()
	pb, _ := priceCeil.Float64()

	virtualBase := decimal.NewFromFloat(l / math.Sqrt(pb))
	virtualQuote := decimal.NewFromFloat(l * math.Sqrt(pa))

	return virtualBase, virtualQuote
}

// UnitPrice computes the cash moved by a 1-share trade against the curve.
// A buy quote is rounded down, a sell quote up, so for the same reserves
// buyQuote <= sellQuote always holds.
func (f ConcentratedLiquidity) UnitPrice(
	opts mm.FormulaOpts, side mm.TradeSide,
) (decimal.Decimal, error) {
	if err := validateOpts(opts); err != nil {
		return decimal.Zero, err
	}
	if side == mm.TradeSell && opts.BaseReserve.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrEmptyShareReserve
	}

	liquidity, err := f.Liquidity(opts)
	if err != nil {
		return decimal.Zero, err
	}
	virtualBase, virtualQuote := f.VirtualReserves(
		liquidity, opts.PriceFloor, opts.PriceCeil,
	)

	x, _ := opts.BaseReserve.Float64()
	y, _ := opts.QuoteReserve.Float64()
	vx, _ := virtualBase.Float64()
	vy, _ := virtualQuote.Float64()

	totalBase := x + vx
	totalQuote := y + vy
	k := totalBase * totalQuote

	var newTotalBase float64
	if side == mm.TradeBuy {
		newTotalBase = totalBase + 1
	} else {
		newTotalBase = totalBase - 1
	}
	if newTotalBase <= 0 {
		return decimal.Zero, ErrEmptyShareReserve
	}

	newQuote := k/newTotalBase - vy

	var price decimal.Decimal
	if side == mm.TradeBuy {
		price = mathutil.RoundDown(decimal.NewFromFloat(y-newQuote), mathutil.MoneyPrecision)
		if !price.IsPositive() || price.GreaterThan(opts.QuoteReserve) {
			return decimal.Zero, ErrEmptyCashReserve
		}
	} else {
		price = mathutil.RoundUp(decimal.NewFromFloat(newQuote-y), mathutil.MoneyPrecision)
	}

	return price, nil
}

// SpotPrice returns the price implied by the real reserve ratio y/x.
func (ConcentratedLiquidity) SpotPrice(opts mm.FormulaOpts) (decimal.Decimal, error) {
	if err := validateOpts(opts); err != nil {
		return decimal.Zero, err
	}
	if opts.BaseReserve.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrEmptyShareReserve
	}

	return opts.QuoteReserve.Div(opts.BaseReserve), nil
}

func validateOpts(opts mm.FormulaOpts) error {
	if opts.PriceFloor.LessThanOrEqual(decimal.Zero) ||
		opts.PriceCeil.LessThanOrEqual(opts.PriceFloor) {
		return ErrInvalidBounds
	}
	if opts.BaseReserve.IsNegative() || opts.QuoteReserve.IsNegative() {
		return ErrInvalidReserves
	}
	return nil
}
