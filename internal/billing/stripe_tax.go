package billing

import (
	"context"
	"fmt"

	"github.com/dukerupert/haulfile/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

// StripeTaxCalculator computes sales tax on the service fee with the
// Stripe Tax Calculation API.
//
// The calculation ID is returned in tax.Result.ProviderTxID so the payment
// surface can attach it to the payment intent.
//
// Note: Requires Stripe Tax to be enabled in Stripe dashboard.
type StripeTaxCalculator struct {
	client  *stripe.Client
	taxCode string
}

// NewStripeTaxCalculator creates a tax calculator backed by Stripe Tax.
func NewStripeTaxCalculator(cfg StripeConfig) (tax.Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	return &StripeTaxCalculator{
		client:  stripe.NewClient(cfg.APIKey, stripe.WithBackends(cfg.backends())),
		taxCode: cfg.TaxCode,
	}, nil
}

// CalculateTax calls Stripe to tax params.Amount at the business address.
// A zero amount (free amendments) is answered locally.
func (c *StripeTaxCalculator) CalculateTax(ctx context.Context, params tax.Params) (*tax.Result, error) {
	if params.Amount.IsNegative() {
		return nil, tax.ErrNegativeAmount
	}
	cents := params.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents == 0 {
		return tax.Zero(), nil
	}

	reference := params.Reference
	if reference == "" {
		reference = "service_fee"
	}

	calcParams := &stripe.TaxCalculationCreateParams{
		Currency: stripe.String("usd"),
		CustomerDetails: &stripe.TaxCalculationCreateCustomerDetailsParams{
			Address: &stripe.AddressParams{
				Line1:      stripe.String(params.Address.Line1),
				Line2:      stripe.String(params.Address.Line2),
				City:       stripe.String(params.Address.City),
				State:      stripe.String(params.Address.State),
				PostalCode: stripe.String(params.Address.PostalCode),
				Country:    stripe.String(params.Address.CountryOrDefault()),
			},
			AddressSource: stripe.String("billing"),
		},
		LineItems: []*stripe.TaxCalculationCreateLineItemParams{
			{
				Amount:    stripe.Int64(cents),
				Reference: stripe.String(reference),
				TaxCode:   stripe.String(c.taxCode),
			},
		},
	}

	calc, err := c.client.V1TaxCalculations.Create(ctx, calcParams)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	if calc == nil {
		return nil, ErrEmptyTaxResponse
	}

	amount := decimal.New(calc.TaxAmountExclusive, -2)

	return &tax.Result{
		Amount:       amount,
		Rate:         effectiveRate(amount, params.Amount),
		Breakdown:    buildTaxBreakdown(calc),
		ProviderTxID: calc.ID,
		IsEstimate:   false,
	}, nil
}

func effectiveRate(taxAmount, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return taxAmount.Div(base).Round(6)
}

// buildTaxBreakdown groups Stripe's breakdown by jurisdiction and tax type.
// Order follows the first appearance of each jurisdiction.
func buildTaxBreakdown(calc *stripe.TaxCalculation) []tax.Breakdown {
	breakdown := make([]tax.Breakdown, 0, len(calc.TaxBreakdown))
	index := make(map[string]int)

	for _, item := range calc.TaxBreakdown {
		if item == nil || item.TaxRateDetails == nil {
			continue
		}

		details := item.TaxRateDetails
		var name, level string
		switch {
		case details.State != "":
			name, level = details.State, "state"
		case details.Country != "":
			name, level = details.Country, "country"
		default:
			continue
		}

		key := fmt.Sprintf("%s|%s|%s", level, name, details.TaxType)
		amount := decimal.New(item.Amount, -2)

		if i, ok := index[key]; ok {
			breakdown[i].Amount = breakdown[i].Amount.Add(amount)
			continue
		}

		// PercentageDecimal is a percentage string: "6.5" means 0.065.
		rate := decimal.Zero
		if pct, err := decimal.NewFromString(details.PercentageDecimal); err == nil {
			rate = pct.Div(decimal.NewFromInt(100))
		}

		index[key] = len(breakdown)
		breakdown = append(breakdown, tax.Breakdown{
			Jurisdiction: level,
			Name:         name,
			Rate:         rate,
			Amount:       amount,
		})
	}

	return breakdown
}
