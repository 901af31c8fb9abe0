package billing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/dukerupert/haulfile/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const taxCalculationResponse = `{
  "id": "taxcalc_1PqTest",
  "object": "tax.calculation",
  "amount_total": 9582,
  "currency": "usd",
  "tax_amount_exclusive": 585,
  "tax_amount_inclusive": 0,
  "tax_breakdown": [
    {
      "amount": 585,
      "inclusive": false,
      "taxable_amount": 8997,
      "taxability_reason": "standard_rated",
      "tax_rate_details": {"country": "US", "state": "WA", "percentage_decimal": "6.5", "tax_type": "sales_tax"}
    }
  ]
}`

func newTestCalculator(t *testing.T, handler http.HandlerFunc) tax.Calculator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	calc, err := NewStripeTaxCalculator(StripeConfig{
		APIKey:  "sk_test_123",
		BaseURL: srv.URL,
	})
	require.NoError(t, err)
	return calc
}

func feeParams(amount string) tax.Params {
	return tax.Params{
		Address: tax.Address{
			Line1:      "4100 Industrial Way",
			City:       "Spokane",
			State:      "WA",
			PostalCode: "99202",
		},
		Amount:    decimal.RequireFromString(amount),
		Reference: "fil_123",
	}
}

func TestStripeTaxCalculator_CalculateTax(t *testing.T) {
	var form map[string]string
	calc := newTestCalculator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/tax/calculations", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = map[string]string{
			"amount":    r.PostForm.Get("line_items[0][amount]"),
			"reference": r.PostForm.Get("line_items[0][reference]"),
			"tax_code":  r.PostForm.Get("line_items[0][tax_code]"),
			"state":     r.PostForm.Get("customer_details[address][state]"),
			"country":   r.PostForm.Get("customer_details[address][country]"),
			"currency":  r.PostForm.Get("currency"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(taxCalculationResponse))
	})

	result, err := calc.CalculateTax(context.Background(), feeParams("89.97"))

	require.NoError(t, err)
	assert.Equal(t, "8997", form["amount"], "service fee is sent in cents")
	assert.Equal(t, "fil_123", form["reference"])
	assert.Equal(t, defaultTaxCode, form["tax_code"])
	assert.Equal(t, "WA", form["state"])
	assert.Equal(t, "US", form["country"], "country defaults to US")
	assert.Equal(t, "usd", form["currency"])

	assert.Equal(t, "5.85", result.Amount.StringFixed(2))
	assert.Equal(t, "taxcalc_1PqTest", result.ProviderTxID)
	assert.False(t, result.IsEstimate)
	require.Len(t, result.Breakdown, 1)
	assert.Equal(t, "state", result.Breakdown[0].Jurisdiction)
	assert.Equal(t, "WA", result.Breakdown[0].Name)
	assert.True(t, result.Breakdown[0].Rate.Equal(decimal.RequireFromString("0.065")))
}

func TestStripeTaxCalculator_ZeroAmountSkipsStripe(t *testing.T) {
	var calls atomic.Int32
	calc := newTestCalculator(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	result, err := calc.CalculateTax(context.Background(), feeParams("0"))

	require.NoError(t, err)
	assert.True(t, result.Amount.IsZero())
	assert.Zero(t, calls.Load(), "free amendments should not call Stripe")
}

func TestStripeTaxCalculator_WrapsAPIErrors(t *testing.T) {
	calc := newTestCalculator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Request-Id", "req_abc")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"customer_tax_location_invalid","message":"We could not determine the customer's tax location."}}`))
	})

	_, err := calc.CalculateTax(context.Background(), feeParams("34.99"))

	require.Error(t, err)
	var se *StripeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "customer_tax_location_invalid", se.Code)
	assert.Equal(t, "400", se.StripeCode)
	assert.False(t, se.IsTemporary())
}

func TestStripeTaxCalculator_RejectsNegativeAmount(t *testing.T) {
	calc := newTestCalculator(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := calc.CalculateTax(context.Background(), feeParams("-1"))

	assert.ErrorIs(t, err, tax.ErrNegativeAmount)
}

func TestNewStripeTaxCalculator_RequiresKey(t *testing.T) {
	_, err := NewStripeTaxCalculator(StripeConfig{})
	assert.ErrorContains(t, err, "API key is required")

	_, err = NewStripeTaxCalculator(StripeConfig{APIKey: "pk_test_123"})
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}

func TestWrapStripeError_NonAPIError(t *testing.T) {
	underlying := context.DeadlineExceeded
	err := wrapStripeError(underlying)

	var se *StripeError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.IsTemporary())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, wrapStripeError(nil))
}
