// Package marketmaking defines the pricing interface an automated market
// maker implements to quote trades against its reserves.
package marketmaking

import (
	"github.com/shopspring/decimal"
)

// TradeSide selects which side of the maker's quote is being priced:
// TradeBuy prices the maker buying one share into its reserves (its bid),
// TradeSell prices the maker handing one share out (its ask).
type TradeSide int

const (
	TradeBuy TradeSide = iota
	TradeSell
)

func (s TradeSide) String() string {
	if s == TradeBuy {
		return "buy"
	}
	return "sell"
}

// FormulaOpts groups the reserve state and price bounds fed to a formula.
type FormulaOpts struct {
	// BaseReserve is the real share reserve (x).
	BaseReserve decimal.Decimal
	// QuoteReserve is the real cash reserve (y).
	QuoteReserve decimal.Decimal
	// PriceFloor is the lower price bound (Pa).
	PriceFloor decimal.Decimal
	// PriceCeil is the upper price bound (Pb).
	PriceCeil decimal.Decimal
}

// MakingFormula derives prices for 1-unit trades from bounded reserves.
type MakingFormula interface {
	// Liquidity solves the liquidity constant so that the curve passes
	// through the current reserves with asymptotes at the price bounds.
	Liquidity(opts FormulaOpts) (decimal.Decimal, error)
	// VirtualReserves returns the (base, quote) offsets implied by the
	// liquidity constant and the price bounds.
	VirtualReserves(liquidity, priceFloor, priceCeil decimal.Decimal) (decimal.Decimal, decimal.Decimal)
	// UnitPrice quotes the cash amount the maker charges (buy) or pays
	// (sell) for trading exactly one share.
	UnitPrice(opts FormulaOpts, side TradeSide) (decimal.Decimal, error)
	// SpotPrice returns the instantaneous price implied by the reserves.
	SpotPrice(opts FormulaOpts) (decimal.Decimal, error)
}
