package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// RoundHalfUp rounds to a whole currency unit, ties away from zero.
func RoundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// Percent returns base * pct / 100 rounded half-up.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return RoundHalfUp(base.Mul(pct).Div(hundred))
}

// Prorate returns base * numerator / denominator rounded half-up.
// A non-positive denominator yields zero.
func Prorate(base, numerator, denominator decimal.Decimal) decimal.Decimal {
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return RoundHalfUp(base.Mul(numerator).Div(denominator))
}

func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// NormalizePercent returns pct when it lies in [0, 100] and ok=false otherwise.
func NormalizePercent(pct decimal.Decimal) (decimal.Decimal, bool) {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return decimal.Zero, false
	}
	return pct, true
}
