package filing

import (
	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/hvut"
)

// Step names.
const (
	StepUpload     = "upload"
	StepExtraction = "extraction"
	StepBusiness   = "business"
	StepVehicles   = "vehicles"
	StepDetails    = "details"
	StepPayment    = "payment"
	StepSubmission = "submission"
)

// Step is one stage of filing a return.
type Step struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// ProgressReport summarises how far a filing has got.
type ProgressReport struct {
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Steps      []Step `json:"steps"`
}

// Progress scores a filing against the steps of its workflow. Upload
// filings start from a document and extract the business and vehicles
// from it; manual filings enter them by hand.
func Progress(f domain.Filing) ProgressReport {
	var steps []Step
	switch f.Workflow {
	case domain.WorkflowUpload:
		steps = []Step{
			{StepUpload, f.UploadID != ""},
			{StepExtraction, f.BusinessID != "" && hasSubject(f)},
			{StepDetails, detailsComplete(f)},
			{StepPayment, paid(f)},
			{StepSubmission, submitted(f)},
		}
	default:
		steps = []Step{
			{StepBusiness, f.BusinessID != ""},
			{StepVehicles, hasSubject(f)},
			{StepDetails, detailsComplete(f)},
			{StepPayment, paid(f)},
			{StepSubmission, submitted(f)},
		}
	}

	completed := 0
	for _, s := range steps {
		if s.Completed {
			completed++
		}
	}

	return ProgressReport{
		Completed:  completed,
		Total:      len(steps),
		Percentage: percentage(completed, len(steps)),
		Steps:      steps,
	}
}

// hasSubject reports whether the filing names what it is about: vehicles
// for returns, the amended vehicle for amendments.
func hasSubject(f domain.Filing) bool {
	if f.FilingType == domain.FilingAmendment {
		return domain.DuplicateKey(f.AmendmentDetails) != "" || len(f.VehicleIDs) > 0
	}
	return len(f.VehicleIDs) > 0
}

func detailsComplete(f domain.Filing) bool {
	if f.FilingType == domain.FilingAmendment {
		return f.AmendmentDetails != nil && f.AmendmentDetails.AmendmentType() == f.AmendmentType
	}
	_, ok := hvut.ParseMonth(f.FirstUsedMonth)
	return ok
}

func paid(f domain.Filing) bool {
	return f.PaymentIntentID != "" || submitted(f)
}

func submitted(f domain.Filing) bool {
	return f.Status != "" && f.Status != domain.StatusDraft
}

// percentage rounds half up.
func percentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return (completed*100 + total/2) / total
}
