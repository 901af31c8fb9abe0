package pricing_test

import (
	"testing"

	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func fleet(n int, vt domain.VehicleType) []domain.Vehicle {
	out := make([]domain.Vehicle, n)
	for i := range out {
		out[i] = domain.Vehicle{WeightCategory: "F", Type: vt}
	}
	return out
}

func TestServiceFee_Tiers(t *testing.T) {
	tests := []struct {
		name        string
		filingType  domain.FilingType
		count       int
		expected    string
		explanation string
	}{
		{"amendment is free", domain.FilingAmendment, 3, "0.00", "policy: amendments are free"},
		{"refund is flat", domain.FilingRefund, 12, "34.99", "refunds ignore vehicle count"},
		{"single vehicle", domain.FilingStandard, 1, "34.99", "flat single-vehicle fee"},
		{"empty filing", domain.FilingStandard, 0, "34.99", "below two vehicles is flat"},
		{"two vehicles", domain.FilingStandard, 2, "59.98", "29.99 x 2"},
		{"three vehicles", domain.FilingStandard, 3, "89.97", "29.99 x 3"},
		{"nine vehicles", domain.FilingStandard, 9, "269.91", "29.99 x 9"},
		{"ten vehicles", domain.FilingStandard, 10, "249.90", "24.99 x 10"},
		{"twenty-four vehicles", domain.FilingStandard, 24, "599.76", "24.99 x 24"},
		{"twenty-five vehicles", domain.FilingStandard, 25, "499.75", "19.99 x 25"},
		{"hundred vehicles", domain.FilingStandard, 100, "1999.00", "19.99 x 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricing.ServiceFee(tt.filingType, tt.count)
			assert.Equal(t, tt.expected, got.StringFixed(2), tt.explanation)
		})
	}
}

func TestFeePolicy_CountsEveryVehicleType(t *testing.T) {
	vehicles := []domain.Vehicle{
		{WeightCategory: "A", Type: domain.VehicleTaxable},
		{WeightCategory: "B", Type: domain.VehicleSuspended},
		{WeightCategory: "C", Type: domain.VehicleCredit},
	}

	got := pricing.FeePolicy{}.ServiceFee(domain.FilingStandard, vehicles)

	assert.Equal(t, "89.97", got.StringFixed(2))
}

func TestFeePolicy_SuspendedFleetFee(t *testing.T) {
	flat := decimal.RequireFromString("24.99")
	policy := pricing.FeePolicy{SuspendedFleetFee: &flat}

	t.Run("unset keeps standard tiers", func(t *testing.T) {
		got := pricing.FeePolicy{}.ServiceFee(domain.FilingStandard, fleet(3, domain.VehicleSuspended))
		assert.Equal(t, "89.97", got.StringFixed(2))
	})

	t.Run("all suspended pays flat", func(t *testing.T) {
		got := policy.ServiceFee(domain.FilingStandard, fleet(3, domain.VehicleSuspended))
		assert.Equal(t, "24.99", got.StringFixed(2))
	})

	t.Run("mixed fleet keeps tiers", func(t *testing.T) {
		vehicles := append(fleet(2, domain.VehicleSuspended), fleet(1, domain.VehicleTaxable)...)
		got := policy.ServiceFee(domain.FilingStandard, vehicles)
		assert.Equal(t, "89.97", got.StringFixed(2))
	})

	t.Run("does not apply to refunds", func(t *testing.T) {
		got := policy.ServiceFee(domain.FilingRefund, fleet(3, domain.VehicleSuspended))
		assert.Equal(t, "34.99", got.StringFixed(2))
	})

	t.Run("empty filing keeps tiers", func(t *testing.T) {
		got := policy.ServiceFee(domain.FilingStandard, nil)
		assert.Equal(t, "34.99", got.StringFixed(2))
	})
}
