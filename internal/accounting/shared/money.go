package shared

import "github.com/shopspring/decimal"

// BalanceTolerance is the largest debit/credit gap accepted as balanced.
var BalanceTolerance = decimal.RequireFromString("0.01")

// Round2 rounds an amount to currency precision.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// WithinTolerance reports whether |a-b| <= BalanceTolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(BalanceTolerance)
}
