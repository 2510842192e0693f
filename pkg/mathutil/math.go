package mathutil

import (
	"github.com/shopspring/decimal"
)

// MoneyPrecision is the number of decimal places every monetary amount is
// expressed with.
const MoneyPrecision = 2

func init() {
	decimal.DivisionPrecision = 8
}

// RoundUp rounds v towards positive infinity at the given number of decimal
// places.
func RoundUp(v decimal.Decimal, places int32) decimal.Decimal {
	return v.RoundCeil(places)
}

// RoundDown rounds v towards negative infinity at the given number of decimal
// places.
func RoundDown(v decimal.Decimal, places int32) decimal.Decimal {
	return v.RoundFloor(places)
}

// RoundNearest rounds v half away from zero at the given number of decimal
// places.
func RoundNearest(v decimal.Decimal, places int32) decimal.Decimal {
	return v.Round(places)
}

// RoundMoney rounds a monetary amount to the nearest cent.
func RoundMoney(v decimal.Decimal) decimal.Decimal {
	return RoundNearest(v, MoneyPrecision)
}

// Max returns the greater of x and y.
func Max(x, y decimal.Decimal) decimal.Decimal {
	if x.GreaterThanOrEqual(y) {
		return x
	}
	return y
}
