package calculator

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PercentChange returns (open - previousClose) / previousClose * 100.
// A zero previousClose is not special-cased: the result is +Inf, -Inf or
// NaN, following IEEE division.
func PercentChange(open, previousClose decimal.Decimal) float64 {
	if previousClose.IsZero() {
		switch open.Sign() {
		case 1:
			return math.Inf(1)
		case -1:
			return math.Inf(-1)
		default:
			return math.NaN()
		}
	}
	pct, _ := open.Sub(previousClose).Div(previousClose).Mul(hundred).Float64()
	return pct
}

// FormatPercent renders a percent change with exactly two decimals.
func FormatPercent(pct float64) string {
	if math.IsInf(pct, 0) || math.IsNaN(pct) {
		return strconv.FormatFloat(pct, 'f', 2, 64)
	}
	return decimal.NewFromFloat(pct).StringFixed(2)
}

// FormatPrice renders a price with exactly two decimals.
func FormatPrice(price decimal.Decimal) string {
	return price.StringFixed(2)
}
