package money

import (
	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places persisted for monetary amounts.
const Scale = 2

var (
	Zero    = decimal.Zero
	Hundred = decimal.NewFromInt(100)
)

// Round normalizes an amount to the persisted scale, rounding halves up
// (away from zero). Applied only at the point a value is written; intermediate
// arithmetic stays unrounded.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// USDEquivalent converts a currency-native amount using the conversion rate
// snapshotted on its transaction row. A zero or missing rate is a data fault
// the caller must treat as an invariant violation, so it is surfaced here as
// ok=false rather than a division panic.
func USDEquivalent(amount, conversionRate decimal.Decimal) (decimal.Decimal, bool) {
	if conversionRate.IsZero() {
		return decimal.Zero, false
	}
	return amount.DivRound(conversionRate, Scale), true
}

// Percent returns base * pct / 100, unrounded.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(Hundred)
}
