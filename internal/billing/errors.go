package billing

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v82"
)

var (
	// ErrInvalidAPIKey is returned when Stripe API key is invalid or missing.
	ErrInvalidAPIKey = errors.New("billing: invalid or missing API key")

	// ErrEmptyTaxResponse is returned when Stripe answers without a calculation.
	ErrEmptyTaxResponse = errors.New("billing: empty tax calculation response")
)

// StripeError wraps a Stripe API error with additional context.
type StripeError struct {
	Message       string // Human-readable error message
	Code          string // Stripe error code (e.g., "rate_limit")
	DeclineCode   string // Card decline reason (if applicable)
	StripeCode    string // HTTP status code from Stripe
	RequestID     string // Stripe request ID for debugging
	OriginalError error  // Original error from Stripe SDK
}

func (e *StripeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("stripe: %s (code: %s)", e.Message, e.Code)
	}
	return fmt.Sprintf("stripe: %s", e.Message)
}

func (e *StripeError) Unwrap() error {
	return e.OriginalError
}

// IsDeclined returns true if error is due to card decline.
func (e *StripeError) IsDeclined() bool {
	return e.Code == "card_declined" || e.DeclineCode != ""
}

// IsTemporary returns true if error is likely transient and retryable.
func (e *StripeError) IsTemporary() bool {
	return e.Code == "rate_limit" || e.Code == "api_connection_error" || e.StripeCode == "503"
}

// wrapStripeError converts SDK errors into StripeError. Errors that did not
// come from the Stripe API (network, context) are wrapped as connection errors.
func wrapStripeError(err error) error {
	if err == nil {
		return nil
	}

	var se *stripe.Error
	if errors.As(err, &se) {
		out := &StripeError{
			Message:       se.Msg,
			Code:          string(se.Code),
			DeclineCode:   string(se.DeclineCode),
			RequestID:     se.RequestID,
			OriginalError: err,
		}
		if se.HTTPStatusCode != 0 {
			out.StripeCode = strconv.Itoa(se.HTTPStatusCode)
		}
		if out.Code == "" {
			out.Code = string(se.Type)
		}
		return out
	}

	return &StripeError{
		Message:       err.Error(),
		Code:          "api_connection_error",
		OriginalError: err,
	}
}
