package domain

import (
	"encoding/json"
	"time"
)

// FilingType is the kind of return being filed.
type FilingType string

const (
	FilingStandard  FilingType = "standard"
	FilingAmendment FilingType = "amendment"
	FilingRefund    FilingType = "refund"
)

// ParseFilingType accepts the canonical names in any case.
func ParseFilingType(s string) (FilingType, bool) {
	switch normalizeEnum(s) {
	case "standard":
		return FilingStandard, true
	case "amendment":
		return FilingAmendment, true
	case "refund":
		return FilingRefund, true
	}
	return "", false
}

// FilingStatus is a filing's lifecycle state. Filings start as drafts and
// move forward through submitted and processing, possibly bouncing between
// processing and action_required, until completed.
type FilingStatus string

const (
	StatusDraft          FilingStatus = "draft"
	StatusSubmitted      FilingStatus = "submitted"
	StatusProcessing     FilingStatus = "processing"
	StatusActionRequired FilingStatus = "action_required"
	StatusCompleted      FilingStatus = "completed"
)

// ParseFilingStatus accepts canonical and camelCase spellings.
func ParseFilingStatus(s string) (FilingStatus, bool) {
	switch normalizeEnum(s) {
	case "draft":
		return StatusDraft, true
	case "submitted":
		return StatusSubmitted, true
	case "processing":
		return StatusProcessing, true
	case "actionrequired":
		return StatusActionRequired, true
	case "completed":
		return StatusCompleted, true
	}
	return "", false
}

// Workflow is how the filer is entering the return.
type Workflow string

const (
	WorkflowManual Workflow = "manual"
	WorkflowUpload Workflow = "upload"
)

// Filing is a persisted return as read from storage. The core never
// writes filings.
type Filing struct {
	ID               string
	UserID           string
	Status           FilingStatus
	FilingType       FilingType
	AmendmentType    AmendmentType
	TaxYear          int
	BusinessID       string
	VehicleIDs       []string
	AmendmentDetails AmendmentDetails
	FirstUsedMonth   string
	Workflow         Workflow
	UploadID         string
	PaymentIntentID  string
	UpdatedAt        time.Time
}

// HasIdentifyingData reports whether the filing is linked to a business
// or at least one vehicle.
func (f Filing) HasIdentifyingData() bool {
	return f.BusinessID != "" || len(f.VehicleIDs) > 0
}

type filingJSON struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId,omitempty"`
	Status           string          `json:"status"`
	FilingType       string          `json:"filingType"`
	AmendmentType    string          `json:"amendmentType,omitempty"`
	TaxYear          int             `json:"taxYear"`
	BusinessID       string          `json:"businessId,omitempty"`
	VehicleIDs       []string        `json:"vehicleIds"`
	AmendmentDetails json.RawMessage `json:"amendmentDetails,omitempty"`
	FirstUsedMonth   string          `json:"firstUsedMonth,omitempty"`
	Workflow         string          `json:"workflow,omitempty"`
	UploadID         string          `json:"uploadId,omitempty"`
	PaymentIntentID  string          `json:"paymentIntentId,omitempty"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// MarshalJSON writes the filing with its amendment details inlined.
func (f Filing) MarshalJSON() ([]byte, error) {
	out := filingJSON{
		ID:              f.ID,
		UserID:          f.UserID,
		Status:          string(f.Status),
		FilingType:      string(f.FilingType),
		AmendmentType:   string(f.AmendmentType),
		TaxYear:         f.TaxYear,
		BusinessID:      f.BusinessID,
		VehicleIDs:      f.VehicleIDs,
		FirstUsedMonth:  f.FirstUsedMonth,
		Workflow:        string(f.Workflow),
		UploadID:        f.UploadID,
		PaymentIntentID: f.PaymentIntentID,
		UpdatedAt:       f.UpdatedAt,
	}
	if out.VehicleIDs == nil {
		out.VehicleIDs = []string{}
	}
	if f.AmendmentDetails != nil {
		raw, err := json.Marshal(f.AmendmentDetails)
		if err != nil {
			return nil, err
		}
		out.AmendmentDetails = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses enum fields leniently. A filing without a status is
// a client-side draft. Unknown statuses and filing types are rejected;
// malformed amendment details are dropped so the filing still loads.
func (f *Filing) UnmarshalJSON(data []byte) error {
	var in filingJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	status, ok := StatusDraft, true
	if in.Status != "" {
		status, ok = ParseFilingStatus(in.Status)
	}
	if !ok {
		return Errorf(EINVALID, "filing.decode", "unknown filing status: %s", in.Status)
	}
	filingType, ok := ParseFilingType(in.FilingType)
	if !ok {
		return Errorf(EINVALID, "filing.decode", "unknown filing type: %s", in.FilingType)
	}

	*f = Filing{
		ID:              in.ID,
		UserID:          in.UserID,
		Status:          status,
		FilingType:      filingType,
		TaxYear:         in.TaxYear,
		BusinessID:      in.BusinessID,
		VehicleIDs:      in.VehicleIDs,
		FirstUsedMonth:  in.FirstUsedMonth,
		Workflow:        Workflow(normalizeEnum(in.Workflow)),
		UploadID:        in.UploadID,
		PaymentIntentID: in.PaymentIntentID,
		UpdatedAt:       in.UpdatedAt,
	}
	if at, ok := ParseAmendmentType(in.AmendmentType); ok {
		f.AmendmentType = at
		f.AmendmentDetails, _ = DecodeAmendmentDetails(at, in.AmendmentDetails)
	}
	return nil
}
