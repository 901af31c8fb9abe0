package domain

import (
	"strconv"
	"strings"
)

// VehicleType classifies how a vehicle contributes to a filing's tax.
type VehicleType string

const (
	VehicleTaxable       VehicleType = "taxable"
	VehicleSuspended     VehicleType = "suspended"
	VehicleCredit        VehicleType = "credit"
	VehiclePriorYearSold VehicleType = "prior_year_sold"
)

// ParseVehicleType accepts the canonical names plus camelCase and
// hyphenated spellings ("priorYearSold", "prior-year-sold").
func ParseVehicleType(s string) (VehicleType, bool) {
	switch normalizeEnum(s) {
	case "taxable":
		return VehicleTaxable, true
	case "suspended":
		return VehicleSuspended, true
	case "credit":
		return VehicleCredit, true
	case "prioryearsold":
		return VehiclePriorYearSold, true
	}
	return "", false
}

// Vehicle is the canonical form every pricing rule sees. The legacy
// suspended flag has already been folded into Type.
type Vehicle struct {
	ID               string      `json:"id,omitempty"`
	VIN              string      `json:"vin,omitempty"`
	WeightCategory   string      `json:"weightCategory"`
	Type             VehicleType `json:"vehicleType"`
	IsLoggingVehicle bool        `json:"isLoggingVehicle"`
}

// IsSuspended reports whether the vehicle is under the mileage threshold.
func (v Vehicle) IsSuspended() bool {
	return v.Type == VehicleSuspended
}

// VehicleInput is a vehicle as submitted by a client. VehicleType may be
// empty for records written before the field existed, in which case
// IsSuspended decides between suspended and taxable.
type VehicleInput struct {
	ID               string `json:"id,omitempty"`
	VIN              string `json:"vin,omitempty"`
	WeightCategory   string `json:"weightCategory"`
	VehicleType      string `json:"vehicleType,omitempty"`
	IsLoggingVehicle bool   `json:"isLoggingVehicle"`
	IsSuspended      bool   `json:"isSuspended"`
}

// NormalizeVehicle converts a client vehicle into its canonical form.
func NormalizeVehicle(in VehicleInput) (Vehicle, error) {
	v := Vehicle{
		ID:               in.ID,
		VIN:              strings.ToUpper(strings.TrimSpace(in.VIN)),
		WeightCategory:   strings.ToUpper(strings.TrimSpace(in.WeightCategory)),
		IsLoggingVehicle: in.IsLoggingVehicle,
	}

	if strings.TrimSpace(in.VehicleType) != "" {
		t, ok := ParseVehicleType(in.VehicleType)
		if !ok {
			return Vehicle{}, Errorf(EINVALID, "vehicle.normalize", "unknown vehicle type: %s", in.VehicleType)
		}
		v.Type = t
		return v, nil
	}

	if in.IsSuspended {
		v.Type = VehicleSuspended
	} else {
		v.Type = VehicleTaxable
	}
	return v, nil
}

// NormalizeVehicles normalizes a batch, reporting every bad entry by index.
func NormalizeVehicles(in []VehicleInput) ([]Vehicle, error) {
	out := make([]Vehicle, 0, len(in))
	var verr error
	for i, vi := range in {
		v, err := NormalizeVehicle(vi)
		if err != nil {
			verr = AddFieldError(verr, vehicleField(i), ErrorMessage(err))
			continue
		}
		out = append(out, v)
	}
	if verr != nil {
		if ve, ok := verr.(*ValidationError); ok {
			ve.Op = "vehicle.normalize"
		}
		return nil, verr
	}
	return out, nil
}

func vehicleField(i int) string {
	return "vehicles[" + strconv.Itoa(i) + "].vehicleType"
}

// normalizeEnum lower-cases and strips separators so "action_required",
// "actionRequired" and "Action-Required" compare equal.
func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}
