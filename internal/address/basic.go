package address

import (
	"context"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// BasicValidator performs format validation without external API calls:
// required fields, a two-letter state and a ZIP or ZIP+4 postal code.
type BasicValidator struct {
	validate *validator.Validate
}

// NewBasicValidator creates a new basic address validator.
func NewBasicValidator() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("zipcode", func(fl validator.FieldLevel) bool {
		return zipPattern.MatchString(fl.Field().String())
	})
	v.RegisterTagNameFunc(jsonFieldName)
	return &BasicValidator{validate: v}
}

// Validate normalizes the address and checks it. Format problems are
// reported in the result, not as an error.
func (v *BasicValidator) Validate(ctx context.Context, addr Address) (*ValidationResult, error) {
	normalized := normalize(addr)
	result := &ValidationResult{
		IsValid:           true,
		NormalizedAddress: &normalized,
	}

	if err := v.validate.StructCtx(ctx, normalized); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, err
		}
		result.IsValid = false
		for _, fe := range verrs {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fe.Field(),
				Message: message(fe),
			})
		}
	}

	if normalized.Country != "" && normalized.Country != "US" {
		result.Warnings = append(result.Warnings, "sales tax is only computed for US addresses")
	}

	return result, nil
}

func normalize(a Address) Address {
	a.BusinessName = strings.TrimSpace(a.BusinessName)
	a.Line1 = strings.TrimSpace(a.Line1)
	a.Line2 = strings.TrimSpace(a.Line2)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.ToUpper(strings.TrimSpace(a.State))
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.ToUpper(strings.TrimSpace(a.Country))
	return a
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "len", "alpha":
		return "state must be a two-letter code"
	case "zipcode":
		return "postal code must be a ZIP or ZIP+4"
	case "iso3166_1_alpha2":
		return "country must be a two-letter ISO code"
	}
	return fe.Field() + " is invalid"
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}
