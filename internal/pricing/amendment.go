package pricing

import (
	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/hvut"
	"github.com/shopspring/decimal"
)

// AmendmentQuote is the price of a single amendment.
type AmendmentQuote struct {
	TotalTax   decimal.Decimal
	ServiceFee decimal.Decimal
	GrandTotal decimal.Decimal
}

// ComputeAmendmentPricing prices an amendment from its details alone.
// Amendments carry no service fee. Details that are missing or do not
// match amendmentType price at zero.
func (e *Engine) ComputeAmendmentPricing(amendmentType domain.AmendmentType, details domain.AmendmentDetails) AmendmentQuote {
	total := hvut.Round(amendmentTax(e.table, amendmentType, details))
	fee := ServiceFee(domain.FilingAmendment, 0)
	return AmendmentQuote{
		TotalTax:   total,
		ServiceFee: fee,
		GrandTotal: hvut.Round(total.Add(fee)),
	}
}

func amendmentTax(table *hvut.Table, amendmentType domain.AmendmentType, details domain.AmendmentDetails) decimal.Decimal {
	switch amendmentType {
	case domain.AmendmentVINCorrection:
		return decimal.Zero

	case domain.AmendmentWeightIncrease:
		d, ok := details.(domain.WeightIncreaseDetails)
		if !ok {
			return decimal.Zero
		}
		if _, ok := hvut.ParseWeightCategory(d.OriginalWeightCategory); !ok {
			return decimal.Zero
		}
		if _, ok := hvut.ParseWeightCategory(d.NewWeightCategory); !ok {
			return decimal.Zero
		}
		delta := table.AnnualTax(d.NewWeightCategory, false).Sub(table.AnnualTax(d.OriginalWeightCategory, false))
		if !delta.IsPositive() {
			return decimal.Zero
		}
		return hvut.ProratedTax(delta, d.IncreaseMonth)

	case domain.AmendmentMileageExceeded:
		d, ok := details.(domain.MileageExceededDetails)
		if !ok {
			return decimal.Zero
		}
		return table.VehicleTax(d.WeightCategory, false, d.FirstUsedMonth, d.IsLoggingVehicle)
	}
	return decimal.Zero
}
