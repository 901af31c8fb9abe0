// Package filing decides whether a new filing request is a continuation of
// one already in progress, and how far along a filing is.
package filing

import (
	"github.com/dukerupert/haulfile/internal/domain"
)

// Candidate is a filing the user is about to start.
type Candidate struct {
	FilingType       domain.FilingType
	AmendmentType    domain.AmendmentType
	TaxYear          int
	BusinessID       string
	VehicleIDs       []string
	AmendmentDetails domain.AmendmentDetails
}

// IsIncomplete reports whether a filing can still be resumed: any draft,
// or a submitted, processing or action-required filing that is linked to
// a business or vehicle.
func IsIncomplete(f domain.Filing) bool {
	switch f.Status {
	case domain.StatusDraft:
		return true
	case domain.StatusSubmitted, domain.StatusProcessing, domain.StatusActionRequired:
		return f.HasIdentifyingData()
	case domain.StatusCompleted:
		return false
	}
	return false
}

// DetectDuplicate returns the first incomplete filing in existing that
// matches the candidate's fingerprint. It reads a snapshot and cannot
// prevent two concurrent requests from creating the same filing.
func DetectDuplicate(c Candidate, existing []domain.Filing) (domain.Filing, bool) {
	for _, f := range existing {
		if !IsIncomplete(f) || f.FilingType != c.FilingType {
			continue
		}
		if matches(c, f) {
			return f, true
		}
	}
	return domain.Filing{}, false
}

func matches(c Candidate, f domain.Filing) bool {
	if c.TaxYear != f.TaxYear {
		return false
	}

	switch c.FilingType {
	case domain.FilingStandard:
		return c.BusinessID == f.BusinessID && sameVehicleSet(c.VehicleIDs, f.VehicleIDs)
	case domain.FilingRefund:
		return sameVehicleSet(c.VehicleIDs, f.VehicleIDs)
	case domain.FilingAmendment:
		if c.AmendmentType == "" || c.AmendmentType != f.AmendmentType {
			return false
		}
		key := domain.DuplicateKey(c.AmendmentDetails)
		return key != "" && key == domain.DuplicateKey(f.AmendmentDetails)
	}
	return false
}

// sameVehicleSet compares vehicle IDs as sets: order and repeats are ignored.
func sameVehicleSet(a, b []string) bool {
	as, bs := toSet(a), toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for id := range as {
		if _, ok := bs[id]; !ok {
			return false
		}
	}
	return true
}

func toSet(ids []string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}
