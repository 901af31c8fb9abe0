package hvut_test

import (
	"testing"
	"time"

	"github.com/dukerupert/haulfile/internal/hvut"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input    string
		expected hvut.Month
		ok       bool
	}{
		{"July", hvut.July, true},
		{"june", hvut.June, true},
		{" DECEMBER ", hvut.December, true},
		{"Jan", hvut.January, true},
		{"sep", hvut.September, true},
		{"", 0, false},
		{"Juli", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := hvut.ParseMonth(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestProratedTax(t *testing.T) {
	tests := []struct {
		name        string
		annual      string
		month       string
		expected    string
		explanation string
	}{
		{"first month owes full year", "210.00", "July", "210.00", "index 0"},
		{"unknown month owes full year", "210.00", "Thermidor", "210.00", "fallback"},
		{"empty month owes full year", "550.00", "", "550.00", "fallback"},
		{"half year", "210.00", "January", "105.00", "210 / 12 x 6"},
		{"weight increase delta", "110.00", "December", "64.17", "110 / 12 x 7 = 64.1666..."},
		{"last month", "550.00", "June", "45.83", "550 / 12 x 1 = 45.8333..."},
		{"zero annual", "0", "March", "0.00", "nothing to prorate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hvut.ProratedTax(decimal.RequireFromString(tt.annual), tt.month)
			assert.Equal(t, tt.expected, got.StringFixed(2), tt.explanation)
		})
	}
}

func TestProratedTax_LinearInRemainingMonths(t *testing.T) {
	annual := decimal.NewFromInt(1200)

	for m := hvut.July; m <= hvut.June; m++ {
		expected := decimal.NewFromInt(int64(100 * m.Remaining()))
		got := hvut.ProratedTax(annual, m.String())
		assert.True(t, got.Equal(expected), "%s: got %s want %s", m, got, expected)
	}
}

func TestMonthOf(t *testing.T) {
	assert.Equal(t, hvut.July, hvut.MonthOf(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, hvut.December, hvut.MonthOf(time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, hvut.January, hvut.MonthOf(time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, hvut.June, hvut.MonthOf(time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)))
}

func TestTaxYearOf(t *testing.T) {
	assert.Equal(t, 2025, hvut.TaxYearOf(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2025, hvut.TaxYearOf(time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2024, hvut.TaxYearOf(time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)))
}

func TestMonth_String(t *testing.T) {
	assert.Equal(t, "July", hvut.July.String())
	assert.Equal(t, "June", hvut.June.String())
	assert.Equal(t, "", hvut.Month(12).String())
}
