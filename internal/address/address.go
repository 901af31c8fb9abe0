// Package address validates the business address a filing is taxed at.
package address

import (
	"context"

	"github.com/dukerupert/haulfile/internal/tax"
)

// Validator defines the interface for address validation.
// Implementations can use external APIs like USPS or SmartyStreets.
type Validator interface {
	// Validate checks that an address is usable for sales tax sourcing.
	// Even if IsValid is false, NormalizedAddress may contain corrections.
	Validate(ctx context.Context, addr Address) (*ValidationResult, error)
}

// Address is a business address as submitted by the filer.
type Address struct {
	BusinessName string `json:"businessName,omitempty"`
	Line1        string `json:"line1" validate:"required"`
	Line2        string `json:"line2,omitempty"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required,len=2,alpha"`
	PostalCode   string `json:"postalCode" validate:"required,zipcode"`
	Country      string `json:"country,omitempty" validate:"omitempty,iso3166_1_alpha2"`
}

// TaxAddress converts to the form tax calculators take.
func (a Address) TaxAddress() tax.Address {
	return tax.Address{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// ValidationResult contains the outcome of address validation.
type ValidationResult struct {
	IsValid           bool
	NormalizedAddress *Address
	Errors            []ValidationError
	Warnings          []string
}

// ValidationError represents a specific validation error.
type ValidationError struct {
	Field   string
	Message string
}
