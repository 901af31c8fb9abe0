package tax

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// JurisdictionCalculator looks up a state rate from a fixed table and
// falls back to a default rate for states it does not list.
type JurisdictionCalculator struct {
	rates       map[string]decimal.Decimal
	defaultRate decimal.Decimal
}

// NewJurisdictionCalculator builds a calculator from state code → rate.
// State codes are matched case-insensitively.
func NewJurisdictionCalculator(rates map[string]decimal.Decimal, defaultRate decimal.Decimal) (Calculator, error) {
	if err := validateRate(defaultRate); err != nil {
		return nil, err
	}

	normalized := make(map[string]decimal.Decimal, len(rates))
	for state, rate := range rates {
		if err := validateRate(rate); err != nil {
			return nil, err
		}
		normalized[strings.ToUpper(strings.TrimSpace(state))] = rate
	}

	return &JurisdictionCalculator{rates: normalized, defaultRate: defaultRate}, nil
}

// CalculateTax applies the business state's rate to the amount.
func (c *JurisdictionCalculator) CalculateTax(ctx context.Context, params Params) (*Result, error) {
	if err := validateAmount(params.Amount); err != nil {
		return nil, err
	}

	state := strings.ToUpper(strings.TrimSpace(params.Address.State))
	if state == "" {
		return nil, ErrMissingState
	}

	rate, listed := c.rates[state]
	if !listed {
		rate = c.defaultRate
	}
	amount := roundCents(params.Amount.Mul(rate))

	return &Result{
		Amount: amount,
		Rate:   rate,
		Breakdown: []Breakdown{
			{
				Jurisdiction: "state",
				Name:         state,
				Rate:         rate,
				Amount:       amount,
			},
		},
		IsEstimate: !listed,
	}, nil
}
