package billing

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
)

// StripeConfig contains configuration for the Stripe Tax calculator.
type StripeConfig struct {
	// APIKey is the Stripe secret key (sk_test_... or sk_live_...)
	APIKey string

	// TaxCode is the Stripe product tax code applied to the service fee.
	// Default: txcd_20030000 (general services)
	TaxCode string

	// MaxRetries is the maximum number of retries for transient failures
	// Default: 2
	MaxRetries int

	// TimeoutSeconds is the HTTP timeout for Stripe API calls in seconds
	// Default: 10
	TimeoutSeconds int

	// BaseURL overrides the Stripe API endpoint (stripe-mock, tests).
	BaseURL string
}

const (
	defaultTaxCode        = "txcd_20030000"
	defaultMaxRetries     = 2
	defaultTimeoutSeconds = 10
)

// Validate checks that required configuration is present.
func (c *StripeConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("stripe: API key is required")
	}
	if !strings.HasPrefix(c.APIKey, "sk_") && !strings.HasPrefix(c.APIKey, "rk_") {
		return ErrInvalidAPIKey
	}
	if c.MaxRetries < 0 {
		return errors.New("stripe: max retries cannot be negative")
	}
	return nil
}

// IsTestMode returns true if using test mode API keys.
func (c *StripeConfig) IsTestMode() bool {
	return strings.HasPrefix(c.APIKey, "sk_test_") || strings.HasPrefix(c.APIKey, "rk_test_")
}

func (c StripeConfig) withDefaults() StripeConfig {
	if c.TaxCode == "" {
		c.TaxCode = defaultTaxCode
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	return c
}

func (c StripeConfig) backends() *stripe.Backends {
	cfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: time.Duration(c.TimeoutSeconds) * time.Second},
		MaxNetworkRetries: stripe.Int64(int64(c.MaxRetries)),
	}
	if c.BaseURL != "" {
		cfg.URL = stripe.String(c.BaseURL)
	}
	return stripe.NewBackendsWithConfig(cfg)
}
