package tax

import (
	"context"

	"github.com/shopspring/decimal"
)

// PercentageCalculator calculates tax using a single flat rate.
type PercentageCalculator struct {
	rate decimal.Decimal // e.g., 0.08 for 8%
}

// NewPercentageCalculator creates a new percentage-based tax calculator.
func NewPercentageCalculator(rate decimal.Decimal) (Calculator, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	return &PercentageCalculator{rate: rate}, nil
}

// CalculateTax computes tax on the amount using the configured rate.
func (c *PercentageCalculator) CalculateTax(ctx context.Context, params Params) (*Result, error) {
	if err := validateAmount(params.Amount); err != nil {
		return nil, err
	}

	amount := roundCents(params.Amount.Mul(c.rate))

	return &Result{
		Amount: amount,
		Rate:   c.rate,
		Breakdown: []Breakdown{
			{
				Jurisdiction: "state",
				Name:         "Default Sales Tax",
				Rate:         c.rate,
				Amount:       amount,
			},
		},
	}, nil
}
