// Package pricing turns a filing request into the amount a filer pays:
// heavy-vehicle use tax, the platform service fee and sales tax on that fee.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/hvut"
	"github.com/dukerupert/haulfile/internal/tax"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MsgPricingFailed is the only error text Aggregate reports.
const MsgPricingFailed = "Failed to calculate pricing"

// Pricing-related domain errors.
var (
	ErrSalesTaxUnavailable = &domain.Error{Code: domain.EUNAVAILABLE, Message: "Sales tax could not be calculated"}
	ErrUnknownFilingType   = &domain.Error{Code: domain.EINVALID, Message: "Unknown filing type"}
)

// Recorder receives pricing outcomes for metrics and error tracking.
type Recorder interface {
	RecordQuote(filingType string, result *PricingResult, elapsed time.Duration)
	RecordFailure(ctx context.Context, filingType string, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordQuote(string, *PricingResult, time.Duration) {}
func (noopRecorder) RecordFailure(context.Context, string, error)      {}

// Deps holds the engine's collaborators.
type Deps struct {
	Table    *hvut.Table    // defaults to hvut.DefaultTable()
	SalesTax tax.Calculator // required
	Fees     FeePolicy
	Logger   zerolog.Logger
	Recorder Recorder // optional
}

// Engine prices filings. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	table    *hvut.Table
	salesTax tax.Calculator
	fees     FeePolicy
	logger   zerolog.Logger
	recorder Recorder
}

// NewEngine creates a pricing engine.
func NewEngine(deps Deps) (*Engine, error) {
	if deps.SalesTax == nil {
		return nil, errors.New("pricing: sales tax calculator is required")
	}
	if deps.Table == nil {
		deps.Table = hvut.DefaultTable()
	}
	if deps.Recorder == nil {
		deps.Recorder = noopRecorder{}
	}
	return &Engine{
		table:    deps.Table,
		salesTax: deps.SalesTax,
		fees:     deps.Fees,
		logger:   deps.Logger,
		recorder: deps.Recorder,
	}, nil
}

// Table returns the tax schedule the engine prices with.
func (e *Engine) Table() *hvut.Table {
	return e.table
}

// Aggregate prices a filing and never fails loudly: any error, including a
// panic, becomes {Success: false, Error: MsgPricingFailed} with no partial
// breakdown.
func (e *Engine) Aggregate(ctx context.Context, req FilingRequest, vehicles []domain.Vehicle, businessAddress tax.Address) (out AggregateResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			e.fail(ctx, req, fmt.Errorf("pricing: panic: %v", r))
			out = AggregateResult{Success: false, Error: MsgPricingFailed}
		}
	}()

	result, err := e.Calculate(ctx, req, vehicles, businessAddress)
	if err != nil {
		e.fail(ctx, req, err)
		return AggregateResult{Success: false, Error: MsgPricingFailed}
	}

	e.recorder.RecordQuote(string(req.FilingType), result, time.Since(start))
	return AggregateResult{Success: true, Breakdown: result}
}

func (e *Engine) fail(ctx context.Context, req FilingRequest, err error) {
	e.logger.Error().
		Err(err).
		Str("request_id", domain.RequestIDFromContext(ctx)).
		Str("filing_type", string(req.FilingType)).
		Str("op", domain.ErrorOp(err)).
		Msg("pricing failed")
	e.recorder.RecordFailure(ctx, string(req.FilingType), err)
}

// Calculate prices a filing and returns any failure. The sales tax
// calculator is called exactly once, on the service fee only.
func (e *Engine) Calculate(ctx context.Context, req FilingRequest, vehicles []domain.Vehicle, businessAddress tax.Address) (*PricingResult, error) {
	const op = "pricing.calculate"

	result := &PricingResult{
		TotalTax:         decimal.Zero,
		TotalRefund:      decimal.Zero,
		VehicleBreakdown: []VehicleLine{},
		TableVersion:     e.table.Version(),
	}

	switch req.FilingType {
	case domain.FilingAmendment:
		if req.AmendmentDetails == nil && req.AmendmentType != domain.AmendmentVINCorrection {
			e.logger.Warn().
				Str("amendment_type", string(req.AmendmentType)).
				Msg("amendment has no details, pricing at zero")
		}
		result.TotalTax = e.ComputeAmendmentPricing(req.AmendmentType, req.AmendmentDetails).TotalTax
	case domain.FilingRefund:
		e.priceRefund(result, req, vehicles)
	case domain.FilingStandard:
		e.priceStandard(result, req, vehicles)
	default:
		return nil, domain.WrapError(ErrUnknownFilingType, domain.EINVALID, op, fmt.Sprintf("unknown filing type: %q", req.FilingType))
	}

	result.ServiceFee = hvut.Round(e.fees.ServiceFee(req.FilingType, vehicles))

	salesTax, err := e.salesTax.CalculateTax(ctx, tax.Params{
		Address:   businessAddress,
		Amount:    result.ServiceFee,
		Reference: req.ID,
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EUNAVAILABLE, op, ErrSalesTaxUnavailable.Message)
	}
	if salesTax == nil {
		return nil, domain.WrapError(ErrSalesTaxUnavailable, domain.EUNAVAILABLE, op, "sales tax calculator returned no result")
	}

	result.TotalTax = hvut.Round(result.TotalTax)
	result.TotalRefund = hvut.Round(result.TotalRefund)
	result.SalesTax = hvut.Round(salesTax.Amount)
	result.SalesTaxRate = salesTax.Rate
	result.SalesTaxTxID = salesTax.ProviderTxID
	result.GrandTotal = hvut.Round(result.TotalTax.Add(result.ServiceFee).Add(result.SalesTax))

	return result, nil
}

// priceRefund computes what each vehicle would have owed and reports it
// as a refund. Nothing is owed on a refund filing.
func (e *Engine) priceRefund(result *PricingResult, req FilingRequest, vehicles []domain.Vehicle) {
	for _, v := range vehicles {
		refund := e.table.VehicleTax(v.WeightCategory, v.IsSuspended(), req.FirstUsedMonth, v.IsLoggingVehicle)
		result.TotalRefund = result.TotalRefund.Add(refund)
		result.VehicleBreakdown = append(result.VehicleBreakdown, VehicleLine{
			Vehicle:      v,
			TaxAmount:    decimal.Zero,
			RefundAmount: refund,
		})
	}
}

// priceStandard sums taxable vehicles, subtracts credits and floors the
// total at zero. A fleet with nothing taxable or credited owes nothing.
// An untyped vehicle is taxable, matching an unset legacy suspended flag.
func (e *Engine) priceStandard(result *PricingResult, req FilingRequest, vehicles []domain.Vehicle) {
	taxable, credit := decimal.Zero, decimal.Zero
	var owesOrCredits bool

	for _, v := range vehicles {
		line := VehicleLine{Vehicle: v, TaxAmount: decimal.Zero, RefundAmount: decimal.Zero}

		switch v.Type {
		case domain.VehicleTaxable, "":
			owesOrCredits = true
			amount := e.table.VehicleTax(v.WeightCategory, false, req.FirstUsedMonth, v.IsLoggingVehicle)
			taxable = taxable.Add(amount)
			line.TaxAmount = amount
		case domain.VehicleCredit:
			owesOrCredits = true
			amount := e.table.VehicleTax(v.WeightCategory, false, req.FirstUsedMonth, v.IsLoggingVehicle)
			credit = credit.Add(amount)
			line.TaxAmount = amount.Neg()
		case domain.VehicleSuspended, domain.VehiclePriorYearSold:
		}

		result.VehicleBreakdown = append(result.VehicleBreakdown, line)
	}

	if len(vehicles) > 0 && !owesOrCredits {
		result.TotalTax = decimal.Zero
		return
	}

	total := taxable.Sub(credit)
	if total.IsNegative() {
		total = decimal.Zero
	}
	result.TotalTax = total
}
