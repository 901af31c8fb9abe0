package provider_test

import (
	"context"
	"testing"

	"github.com/dukerupert/haulfile/internal/billing"
	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/provider"
	"github.com/dukerupert/haulfile/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		input    string
		expected provider.Name
		wantErr  bool
	}{
		{"", provider.NameNoTax, false},
		{"none", provider.NameNoTax, false},
		{" Percentage ", provider.NamePercentage, false},
		{"JURISDICTION", provider.NameJurisdiction, false},
		{"stripe", provider.NameStripeTax, false},
		{"avalara", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := provider.ParseName(tt.input)
			if tt.wantErr {
				assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
				assert.Contains(t, domain.ErrorMessage(err), "unknown tax provider")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNewTaxCalculator_Providers(t *testing.T) {
	ctx := context.Background()
	params := tax.Params{
		Address: tax.Address{State: "TX", PostalCode: "73301"},
		Amount:  decimal.RequireFromString("34.99"),
	}

	tests := []struct {
		name     string
		config   provider.TaxConfig
		expected string
	}{
		{
			name:     "no tax",
			config:   provider.TaxConfig{Name: provider.NameNoTax},
			expected: "0.00",
		},
		{
			name:     "flat percentage",
			config:   provider.TaxConfig{Name: provider.NamePercentage, DefaultRate: decimal.RequireFromString("0.06")},
			expected: "2.10",
		},
		{
			name: "state rate",
			config: provider.TaxConfig{
				Name:        provider.NameJurisdiction,
				DefaultRate: decimal.Zero,
				StateRates:  map[string]decimal.Decimal{"TX": decimal.RequireFromString("0.0625")},
			},
			expected: "2.19",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := provider.NewTaxCalculator(&tt.config)
			require.NoError(t, err)

			res, err := calc.CalculateTax(ctx, params)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.Amount.StringFixed(2))
		})
	}
}

func TestNewTaxCalculator_Stripe(t *testing.T) {
	calc, err := provider.NewTaxCalculator(&provider.TaxConfig{
		Name:   provider.NameStripeTax,
		Stripe: billing.StripeConfig{APIKey: "sk_test_123"},
	})
	require.NoError(t, err)
	assert.IsType(t, &billing.StripeTaxCalculator{}, calc)

	_, err = provider.NewTaxCalculator(&provider.TaxConfig{Name: provider.NameStripeTax})
	assert.Error(t, err, "stripe requires an API key")
}

func TestNewTaxCalculator_Errors(t *testing.T) {
	_, err := provider.NewTaxCalculator(nil)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	_, err = provider.NewTaxCalculator(&provider.TaxConfig{Name: "avalara"})
	assert.Contains(t, domain.ErrorMessage(err), "unknown tax provider: avalara")

	_, err = provider.NewTaxCalculator(&provider.TaxConfig{Name: provider.NamePercentage, DefaultRate: decimal.NewFromInt(-1)})
	assert.Error(t, err, "negative rate is rejected")
}
