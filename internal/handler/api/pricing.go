package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dukerupert/haulfile/internal/address"
	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/events"
	"github.com/dukerupert/haulfile/internal/handler"
	"github.com/dukerupert/haulfile/internal/middleware"
	"github.com/dukerupert/haulfile/internal/pricing"
	"github.com/dukerupert/haulfile/internal/tax"
	"github.com/go-playground/validator/v10"
)

// AmendmentRecorder counts amendment quotes.
type AmendmentRecorder interface {
	RecordAmendmentQuote(amendmentType string)
}

// QuoteRequest is the body of POST /api/pricing/quote.
type QuoteRequest struct {
	FilingID         string                `json:"filingId,omitempty" validate:"max=64"`
	FilingType       string                `json:"filingType" validate:"required"`
	FirstUsedMonth   string                `json:"firstUsedMonth,omitempty"`
	AmendmentType    string                `json:"amendmentType,omitempty"`
	AmendmentDetails json.RawMessage       `json:"amendmentDetails,omitempty"`
	Vehicles         []domain.VehicleInput `json:"vehicles" validate:"max=10000,dive"`
	BusinessAddress  *address.Address      `json:"businessAddress,omitempty" validate:"-"`
}

// AmendmentRequest is the body of POST /api/pricing/amendment.
type AmendmentRequest struct {
	AmendmentType    string          `json:"amendmentType" validate:"required"`
	AmendmentDetails json.RawMessage `json:"amendmentDetails,omitempty"`
}

// PricingHandler serves filing quotes.
type PricingHandler struct {
	engine    *pricing.Engine
	addresses address.Validator
	publisher events.Publisher
	recorder  AmendmentRecorder
	validate  *validator.Validate
	now       func() time.Time
}

// NewPricingHandler creates a pricing handler. publisher and recorder may be nil.
func NewPricingHandler(engine *pricing.Engine, addresses address.Validator, publisher events.Publisher, recorder AmendmentRecorder) *PricingHandler {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &PricingHandler{
		engine:    engine,
		addresses: addresses,
		publisher: publisher,
		recorder:  recorder,
		validate:  newValidator(),
		now:       time.Now,
	}
}

// Quote handles POST /api/pricing/quote.
//
// Input problems are answered with 400. Once the request is well formed it
// is handed to the aggregator, whose failures are all reported as the same
// 422 body so no internals leak.
func (h *PricingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	const op = "api.quote"
	ctx := r.Context()

	var req QuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var verr error
	if err := validateStruct(h.validate, op, req); err != nil {
		if !domain.IsValidationError(err) {
			handler.ErrorResponse(w, r, err)
			return
		}
		verr = mergeFieldErrors(verr, err, op)
	}

	vehicles, err := domain.NormalizeVehicles(req.Vehicles)
	if err != nil {
		verr = mergeFieldErrors(verr, err, op)
	}

	businessAddress, err := h.businessAddress(ctx, req.BusinessAddress)
	if err != nil {
		if !domain.IsValidationError(err) {
			handler.ErrorResponse(w, r, err)
			return
		}
		verr = mergeFieldErrors(verr, err, op)
	}

	filingReq, err := filingRequest(ctx, req)
	if err != nil {
		verr = mergeFieldErrors(verr, err, op)
	}

	if verr != nil {
		handler.ValidationErrorResponse(w, r, verr)
		return
	}

	result := h.engine.Aggregate(ctx, filingReq, vehicles, businessAddress)
	if !result.Success {
		handler.WriteJSON(w, r, http.StatusUnprocessableEntity, newQuoteResponse(result))
		return
	}

	h.publishPriced(ctx, filingReq, result.Breakdown, len(vehicles))
	handler.WriteJSON(w, r, http.StatusOK, newQuoteResponse(result))
}

// Amendment handles POST /api/pricing/amendment.
func (h *PricingHandler) Amendment(w http.ResponseWriter, r *http.Request) {
	const op = "api.amendment"
	ctx := r.Context()

	var req AmendmentRequest
	if err := decodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if err := validateStruct(h.validate, op, req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	amendmentType, ok := domain.ParseAmendmentType(req.AmendmentType)
	if !ok {
		handler.ValidationErrorResponse(w, r,
			domain.NewValidationError(op, "amendmentType", "amendmentType must be one of: vin_correction weight_increase mileage_exceeded"))
		return
	}

	details := amendmentDetails(ctx, op, amendmentType, req.AmendmentDetails)
	quote := h.engine.ComputeAmendmentPricing(amendmentType, details)
	if h.recorder != nil {
		h.recorder.RecordAmendmentQuote(string(amendmentType))
	}

	handler.WriteJSON(w, r, http.StatusOK, newAmendmentResponse(quote))
}

// businessAddress validates the optional address. Without one the sales
// tax calculator receives an empty address.
func (h *PricingHandler) businessAddress(ctx context.Context, in *address.Address) (tax.Address, error) {
	const op = "api.quote.address"

	if in == nil {
		return tax.Address{}, nil
	}

	res, err := h.addresses.Validate(ctx, *in)
	if err != nil {
		return tax.Address{}, domain.Internal(err, op, "address validation failed")
	}
	if !res.IsValid {
		var verr error
		for _, fe := range res.Errors {
			verr = domain.AddFieldError(verr, "businessAddress."+fe.Field, fe.Message)
		}
		return tax.Address{}, verr
	}
	return res.NormalizedAddress.TaxAddress(), nil
}

// filingRequest builds the engine request. An unrecognised filing type is
// passed through so the aggregator reports it as a pricing failure.
func filingRequest(ctx context.Context, req QuoteRequest) (pricing.FilingRequest, error) {
	const op = "api.quote"

	out := pricing.FilingRequest{
		ID:             req.FilingID,
		FilingType:     domain.FilingType(req.FilingType),
		FirstUsedMonth: req.FirstUsedMonth,
	}
	if ft, ok := domain.ParseFilingType(req.FilingType); ok {
		out.FilingType = ft
	}

	if out.FilingType != domain.FilingAmendment {
		return out, nil
	}

	at, ok := domain.ParseAmendmentType(req.AmendmentType)
	if !ok {
		return out, domain.NewValidationError(op, "amendmentType", "amendmentType is required for amendment filings")
	}
	out.AmendmentType = at
	out.AmendmentDetails = amendmentDetails(ctx, op, at, req.AmendmentDetails)
	return out, nil
}

// amendmentDetails decodes details for pricing. Malformed details are
// logged and dropped, so the amendment prices at zero.
func amendmentDetails(ctx context.Context, op string, at domain.AmendmentType, raw json.RawMessage) domain.AmendmentDetails {
	details, err := domain.DecodeAmendmentDetails(at, raw)
	if err != nil {
		middleware.GetLogger(ctx).Warn().
			Err(err).
			Str("op", op).
			Str("amendment_type", string(at)).
			Msg("ignoring malformed amendment details")
		return nil
	}
	return details
}

func (h *PricingHandler) publishPriced(ctx context.Context, req pricing.FilingRequest, b *pricing.PricingResult, vehicleCount int) {
	event := events.FilingPriced{
		RequestID:    domain.RequestIDFromContext(ctx),
		FilerID:      domain.FilerIDFromContext(ctx),
		FilingID:     req.ID,
		FilingType:   string(req.FilingType),
		TableVersion: b.TableVersion,
		VehicleCount: vehicleCount,
		TotalTax:     money(b.TotalTax),
		ServiceFee:   money(b.ServiceFee),
		SalesTax:     money(b.SalesTax),
		GrandTotal:   money(b.GrandTotal),
		TotalRefund:  money(b.TotalRefund),
		PricedAt:     h.now().UTC(),
	}
	if err := h.publisher.Publish(ctx, events.SubjectFilingPriced, event); err != nil {
		middleware.GetLogger(ctx).Warn().Err(err).Str("subject", events.SubjectFilingPriced).Msg("failed to publish event")
	}
}
