package tax

import "context"

// NoTaxCalculator returns zero tax for all calculations.
// Used where the service fee is not subject to sales tax.
type NoTaxCalculator struct{}

// NewNoTaxCalculator creates a new no-tax calculator.
func NewNoTaxCalculator() Calculator {
	return &NoTaxCalculator{}
}

// CalculateTax always returns zero tax.
func (c *NoTaxCalculator) CalculateTax(ctx context.Context, params Params) (*Result, error) {
	if err := validateAmount(params.Amount); err != nil {
		return nil, err
	}
	return Zero(), nil
}
