package hvut

import "github.com/shopspring/decimal"

// Cents is the number of decimal places every monetary value is rounded to.
const Cents = 2

// Round rounds a monetary amount to whole cents, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Cents)
}
