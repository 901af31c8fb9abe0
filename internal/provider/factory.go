// Package provider builds the sales-tax calculator selected by configuration.
package provider

import (
	"strings"

	"github.com/dukerupert/haulfile/internal/billing"
	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/tax"
	"github.com/shopspring/decimal"
)

// Name identifies a sales-tax provider implementation.
type Name string

const (
	NameNoTax        Name = "none"
	NamePercentage   Name = "percentage"
	NameJurisdiction Name = "jurisdiction"
	NameStripeTax    Name = "stripe"
)

// Names lists the providers in the order they are documented.
var Names = []Name{NameNoTax, NamePercentage, NameJurisdiction, NameStripeTax}

// ParseName resolves a configured provider name. Empty selects NameNoTax.
func ParseName(s string) (Name, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return NameNoTax, nil
	}
	for _, n := range Names {
		if string(n) == s {
			return n, nil
		}
	}
	return "", ErrUnknownProvider(s)
}

// TaxConfig is everything any tax provider needs. Each provider reads
// only its own fields.
type TaxConfig struct {
	Name        Name
	DefaultRate decimal.Decimal            // percentage, jurisdiction fallback
	StateRates  map[string]decimal.Decimal // jurisdiction
	Stripe      billing.StripeConfig       // stripe
}

var errNilConfig = &domain.Error{Code: domain.EINVALID, Op: "provider.tax", Message: "config cannot be nil"}

// ErrUnknownProvider creates an error for unknown provider names.
func ErrUnknownProvider(name string) error {
	return domain.Errorf(domain.EINVALID, "provider.tax", "unknown tax provider: %s", name)
}

// NewTaxCalculator creates a tax calculator based on the provider name in config.
func NewTaxCalculator(config *TaxConfig) (tax.Calculator, error) {
	if config == nil {
		return nil, errNilConfig
	}

	switch config.Name {
	case NameNoTax, "":
		return tax.NewNoTaxCalculator(), nil

	case NamePercentage:
		return tax.NewPercentageCalculator(config.DefaultRate)

	case NameJurisdiction:
		return tax.NewJurisdictionCalculator(config.StateRates, config.DefaultRate)

	case NameStripeTax:
		return billing.NewStripeTaxCalculator(config.Stripe)

	default:
		return nil, ErrUnknownProvider(string(config.Name))
	}
}
