// Package tax computes sales tax on the platform's service fee. The
// regulatory heavy-vehicle tax is never sales-taxed.
package tax

import (
	"context"

	"github.com/shopspring/decimal"
)

// Calculator defines the interface for sales tax calculation.
// Implementations: PercentageCalculator, JurisdictionCalculator,
// billing.StripeTaxCalculator, NoTaxCalculator
type Calculator interface {
	// CalculateTax computes sales tax on params.Amount at params.Address.
	CalculateTax(ctx context.Context, params Params) (*Result, error)
}

// Params contains all information needed for tax calculation.
type Params struct {
	Address   Address
	Amount    decimal.Decimal // taxable amount in dollars
	Reference string          // e.g. filing ID, passed to providers for audit
}

// Address represents the business address tax is sourced to.
type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// CountryOrDefault returns the country code, defaulting to US.
func (a Address) CountryOrDefault() string {
	if a.Country == "" {
		return "US"
	}
	return a.Country
}

// Result contains the calculated tax amount and breakdown.
type Result struct {
	Amount       decimal.Decimal // rounded to cents
	Rate         decimal.Decimal // effective rate, e.g. 0.065 for 6.5%
	Breakdown    []Breakdown
	ProviderTxID string // For audit trail
	IsEstimate   bool
}

// Breakdown represents tax for a single jurisdiction.
type Breakdown struct {
	Jurisdiction string          // "state", "county", "city"
	Name         string          // e.g., "Washington State"
	Rate         decimal.Decimal // e.g., 0.065 for 6.5%
	Amount       decimal.Decimal
}

// Zero is the result for an untaxed amount.
func Zero() *Result {
	return &Result{
		Amount:    decimal.Zero,
		Rate:      decimal.Zero,
		Breakdown: []Breakdown{},
	}
}

func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

func validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidTaxRate
	}
	return nil
}
