package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/events"
	"github.com/dukerupert/haulfile/internal/filing"
	"github.com/dukerupert/haulfile/internal/handler"
	"github.com/dukerupert/haulfile/internal/hvut"
	"github.com/dukerupert/haulfile/internal/middleware"
	"github.com/go-playground/validator/v10"
)

// Duplicate-check outcomes, used as metric labels.
const (
	OutcomeDuplicate = "duplicate"
	OutcomeClear     = "clear"
	OutcomeError     = "error"
)

// DuplicateRecorder counts duplicate checks.
type DuplicateRecorder interface {
	RecordDuplicateCheck(filingType, outcome string)
	RecordDuplicate(filingType, status string)
}

// DuplicateCheckRequest is the body of POST /api/filings/duplicate-check.
// UserID is only read when the gateway did not identify the filer. TaxYear
// defaults to the current tax year.
type DuplicateCheckRequest struct {
	UserID           string          `json:"userId,omitempty"`
	FilingType       string          `json:"filingType" validate:"required,oneof=standard amendment refund"`
	AmendmentType    string          `json:"amendmentType,omitempty"`
	TaxYear          int             `json:"taxYear,omitempty" validate:"omitempty,min=2000,max=2100"`
	BusinessID       string          `json:"businessId,omitempty"`
	VehicleIDs       []string        `json:"vehicleIds" validate:"max=10000"`
	AmendmentDetails json.RawMessage `json:"amendmentDetails,omitempty"`
}

type duplicateCheckResponse struct {
	Duplicate bool                   `json:"duplicate"`
	Filing    *domain.Filing         `json:"filing,omitempty"`
	Progress  *filing.ProgressReport `json:"progress,omitempty"`
}

type progressResponse struct {
	Incomplete bool `json:"incomplete"`
	filing.ProgressReport
}

// FilingsHandler serves filing-intelligence endpoints.
type FilingsHandler struct {
	detector  *filing.Detector
	publisher events.Publisher
	recorder  DuplicateRecorder
	validate  *validator.Validate
	now       func() time.Time
}

// NewFilingsHandler creates a filings handler. publisher and recorder may be nil.
func NewFilingsHandler(detector *filing.Detector, publisher events.Publisher, recorder DuplicateRecorder) *FilingsHandler {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &FilingsHandler{
		detector:  detector,
		publisher: publisher,
		recorder:  recorder,
		validate:  newValidator(),
		now:       time.Now,
	}
}

// DuplicateCheck handles POST /api/filings/duplicate-check. The answer is
// advisory: a clear result does not reserve anything.
func (h *FilingsHandler) DuplicateCheck(w http.ResponseWriter, r *http.Request) {
	const op = "api.duplicate_check"
	ctx := r.Context()

	var req DuplicateCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	req.FilingType = strings.ToLower(strings.TrimSpace(req.FilingType))
	if err := validateStruct(h.validate, op, req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	if req.TaxYear == 0 {
		req.TaxYear = hvut.TaxYearOf(h.now())
	}

	candidate, err := candidateFrom(req)
	if err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	userID := domain.FilerIDFromContext(ctx)
	if userID == "" {
		userID = strings.TrimSpace(req.UserID)
	}

	match, err := h.detector.Check(ctx, userID, candidate)
	if err != nil {
		h.recordCheck(req.FilingType, OutcomeError)
		handler.ErrorResponse(w, r, err)
		return
	}

	if match == nil {
		h.recordCheck(req.FilingType, OutcomeClear)
		handler.WriteJSON(w, r, http.StatusOK, duplicateCheckResponse{Duplicate: false})
		return
	}

	h.recordCheck(req.FilingType, OutcomeDuplicate)
	if h.recorder != nil {
		h.recorder.RecordDuplicate(req.FilingType, string(match.Filing.Status))
	}
	h.publishDuplicate(ctx, userID, match)

	handler.WriteJSON(w, r, http.StatusOK, duplicateCheckResponse{
		Duplicate: true,
		Filing:    &match.Filing,
		Progress:  &match.Progress,
	})
}

// Progress handles POST /api/filings/progress. The body is a filing as
// stored; the response is its step checklist.
func (h *FilingsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	var f domain.Filing
	if err := decodeJSON(r, &f); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.WriteJSON(w, r, http.StatusOK, progressResponse{
		Incomplete:     filing.IsIncomplete(f),
		ProgressReport: filing.Progress(f),
	})
}

func candidateFrom(req DuplicateCheckRequest) (filing.Candidate, error) {
	const op = "api.duplicate_check"

	filingType, _ := domain.ParseFilingType(req.FilingType)
	c := filing.Candidate{
		FilingType: filingType,
		TaxYear:    req.TaxYear,
		BusinessID: strings.TrimSpace(req.BusinessID),
		VehicleIDs: req.VehicleIDs,
	}

	if filingType != domain.FilingAmendment {
		return c, nil
	}

	at, ok := domain.ParseAmendmentType(req.AmendmentType)
	if !ok {
		return c, domain.NewValidationError(op, "amendmentType", "amendmentType is required for amendment filings")
	}
	details, err := domain.DecodeAmendmentDetails(at, req.AmendmentDetails)
	if err != nil {
		return c, domain.NewValidationError(op, "amendmentDetails", domain.ErrorMessage(err))
	}
	c.AmendmentType = at
	c.AmendmentDetails = details
	return c, nil
}

func (h *FilingsHandler) recordCheck(filingType, outcome string) {
	if h.recorder != nil {
		h.recorder.RecordDuplicateCheck(filingType, outcome)
	}
}

func (h *FilingsHandler) publishDuplicate(ctx context.Context, userID string, m *filing.Match) {
	event := events.DuplicateDetected{
		RequestID:  domain.RequestIDFromContext(ctx),
		FilerID:    userID,
		FilingID:   m.Filing.ID,
		FilingType: string(m.Filing.FilingType),
		Status:     string(m.Filing.Status),
		Percentage: m.Progress.Percentage,
		DetectedAt: h.now().UTC(),
	}
	if err := h.publisher.Publish(ctx, events.SubjectDuplicateDetected, event); err != nil {
		middleware.GetLogger(ctx).Warn().Err(err).Str("subject", events.SubjectDuplicateDetected).Msg("failed to publish event")
	}
}
