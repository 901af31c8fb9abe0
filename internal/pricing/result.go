package pricing

import (
	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/shopspring/decimal"
)

// FilingRequest is what a filing is priced from, apart from its vehicles
// and address.
type FilingRequest struct {
	ID               string // optional, forwarded to the sales tax provider
	FilingType       domain.FilingType
	FirstUsedMonth   string
	AmendmentType    domain.AmendmentType
	AmendmentDetails domain.AmendmentDetails
}

// VehicleLine is one vehicle's contribution to a filing. TaxAmount is
// negative for credit vehicles. RefundAmount is only set on refunds.
type VehicleLine struct {
	Vehicle      domain.Vehicle
	TaxAmount    decimal.Decimal
	RefundAmount decimal.Decimal
}

// PricingResult is the authoritative price of a filing. Every amount is
// rounded to cents and GrandTotal = TotalTax + ServiceFee + SalesTax.
type PricingResult struct {
	TotalTax         decimal.Decimal
	ServiceFee       decimal.Decimal
	SalesTax         decimal.Decimal
	SalesTaxRate     decimal.Decimal
	GrandTotal       decimal.Decimal
	TotalRefund      decimal.Decimal
	VehicleBreakdown []VehicleLine
	TableVersion     string
	SalesTaxTxID     string
}

// AggregateResult is the outcome of Aggregate. Breakdown is nil whenever
// Success is false.
type AggregateResult struct {
	Success   bool
	Breakdown *PricingResult
	Error     string
}
