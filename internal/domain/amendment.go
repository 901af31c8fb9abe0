package domain

import (
	"encoding/json"
	"strings"
)

// AmendmentType selects which amendment rule applies.
type AmendmentType string

const (
	AmendmentVINCorrection   AmendmentType = "vin_correction"
	AmendmentWeightIncrease  AmendmentType = "weight_increase"
	AmendmentMileageExceeded AmendmentType = "mileage_exceeded"
)

// ParseAmendmentType accepts canonical and camelCase spellings.
func ParseAmendmentType(s string) (AmendmentType, bool) {
	switch normalizeEnum(s) {
	case "vincorrection":
		return AmendmentVINCorrection, true
	case "weightincrease":
		return AmendmentWeightIncrease, true
	case "mileageexceeded":
		return AmendmentMileageExceeded, true
	}
	return "", false
}

// AmendmentDetails is the payload of one amendment. The set of
// implementations is closed; switch on the concrete type.
type AmendmentDetails interface {
	AmendmentType() AmendmentType
	isAmendmentDetails()
}

// VINCorrectionDetails fixes a VIN on an accepted return. It carries no
// tax-relevant fields.
type VINCorrectionDetails struct {
	VehicleID    string `json:"vehicleId,omitempty"`
	OriginalVIN  string `json:"originalVin"`
	CorrectedVIN string `json:"correctedVin"`
}

// WeightIncreaseDetails moves a vehicle into a heavier category partway
// through the tax year.
type WeightIncreaseDetails struct {
	VehicleID              string `json:"vehicleId"`
	OriginalWeightCategory string `json:"originalWeightCategory"`
	NewWeightCategory      string `json:"newWeightCategory"`
	IncreaseMonth          string `json:"increaseMonth"`
}

// MileageExceededDetails reports a suspended vehicle that went over the
// mileage limit. FirstUsedMonth is the vehicle's original first-use month.
type MileageExceededDetails struct {
	VehicleID        string `json:"vehicleId"`
	WeightCategory   string `json:"weightCategory"`
	FirstUsedMonth   string `json:"firstUsedMonth"`
	IsLoggingVehicle bool   `json:"isLoggingVehicle"`
}

func (VINCorrectionDetails) AmendmentType() AmendmentType   { return AmendmentVINCorrection }
func (WeightIncreaseDetails) AmendmentType() AmendmentType  { return AmendmentWeightIncrease }
func (MileageExceededDetails) AmendmentType() AmendmentType { return AmendmentMileageExceeded }

func (VINCorrectionDetails) isAmendmentDetails()   {}
func (WeightIncreaseDetails) isAmendmentDetails()  {}
func (MileageExceededDetails) isAmendmentDetails() {}

// DuplicateKey identifies the vehicle an amendment applies to: the
// original VIN for corrections, the vehicle ID otherwise.
func DuplicateKey(d AmendmentDetails) string {
	switch d := d.(type) {
	case VINCorrectionDetails:
		return strings.ToUpper(strings.TrimSpace(d.OriginalVIN))
	case WeightIncreaseDetails:
		return d.VehicleID
	case MileageExceededDetails:
		return d.VehicleID
	}
	return ""
}

// DecodeAmendmentDetails decodes raw JSON into the details type for t.
// Empty or null input yields nil details and no error.
func DecodeAmendmentDetails(t AmendmentType, raw json.RawMessage) (AmendmentDetails, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var (
		d   AmendmentDetails
		err error
	)
	switch t {
	case AmendmentVINCorrection:
		var v VINCorrectionDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case AmendmentWeightIncrease:
		var v WeightIncreaseDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case AmendmentMileageExceeded:
		var v MileageExceededDetails
		err = json.Unmarshal(raw, &v)
		d = v
	default:
		return nil, Errorf(EINVALID, "amendment.decode", "unknown amendment type: %s", t)
	}
	if err != nil {
		return nil, WrapError(err, EINVALID, "amendment.decode", "malformed amendment details")
	}
	return d, nil
}
