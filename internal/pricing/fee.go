package pricing

import (
	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/hvut"
	"github.com/shopspring/decimal"
)

// Per-vehicle service fee tiers.
var (
	feeSingleVehicle = decimal.RequireFromString("34.99")
	feeSmallFleet    = decimal.RequireFromString("29.99") // 2-9 vehicles
	feeMidFleet      = decimal.RequireFromString("24.99") // 10-24 vehicles
	feeLargeFleet    = decimal.RequireFromString("19.99") // 25+ vehicles
	feeRefund        = decimal.RequireFromString("34.99")
)

// FeePolicy selects the platform's service fee.
type FeePolicy struct {
	// SuspendedFleetFee, when set, is charged flat for a standard filing
	// whose vehicles are all suspended. Nil keeps the regular tiers.
	SuspendedFleetFee *decimal.Decimal
}

// ServiceFee returns the fee for a filing. Every vehicle counts toward
// the tier regardless of its type.
func (p FeePolicy) ServiceFee(filingType domain.FilingType, vehicles []domain.Vehicle) decimal.Decimal {
	if filingType == domain.FilingStandard && p.SuspendedFleetFee != nil && allSuspended(vehicles) {
		return hvut.Round(*p.SuspendedFleetFee)
	}
	return ServiceFee(filingType, len(vehicles))
}

// ServiceFee is the tiered fee for a filing type and vehicle count.
// Amendments are free; refunds pay the single-vehicle flat fee.
func ServiceFee(filingType domain.FilingType, vehicleCount int) decimal.Decimal {
	switch filingType {
	case domain.FilingAmendment:
		return decimal.Zero
	case domain.FilingRefund:
		return feeRefund
	case domain.FilingStandard:
		return standardFee(vehicleCount)
	}
	return standardFee(vehicleCount)
}

func standardFee(n int) decimal.Decimal {
	count := decimal.NewFromInt(int64(n))
	switch {
	case n >= 25:
		return hvut.Round(feeLargeFleet.Mul(count))
	case n >= 10:
		return hvut.Round(feeMidFleet.Mul(count))
	case n >= 2:
		return hvut.Round(feeSmallFleet.Mul(count))
	}
	return feeSingleVehicle
}

func allSuspended(vehicles []domain.Vehicle) bool {
	if len(vehicles) == 0 {
		return false
	}
	for _, v := range vehicles {
		if v.Type != domain.VehicleSuspended {
			return false
		}
	}
	return true
}
