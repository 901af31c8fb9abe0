package filing_test

import (
	"testing"

	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/filing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsIncomplete(t *testing.T) {
	tests := []struct {
		name        string
		filing      domain.Filing
		expected    bool
		explanation string
	}{
		{"empty draft", domain.Filing{Status: domain.StatusDraft}, true, "drafts are always resumable"},
		{"submitted with business", domain.Filing{Status: domain.StatusSubmitted, BusinessID: "biz_1"}, true, "has identifying data"},
		{"processing with vehicle", domain.Filing{Status: domain.StatusProcessing, VehicleIDs: []string{"v1"}}, true, "has identifying data"},
		{"action required with business", domain.Filing{Status: domain.StatusActionRequired, BusinessID: "biz_1"}, true, "has identifying data"},
		{"submitted without data", domain.Filing{Status: domain.StatusSubmitted}, false, "nothing to resume"},
		{"processing with empty vehicle list", domain.Filing{Status: domain.StatusProcessing, VehicleIDs: []string{}}, false, "nothing to resume"},
		{"completed", domain.Filing{Status: domain.StatusCompleted, BusinessID: "biz_1", VehicleIDs: []string{"v1"}}, false, "completed is terminal"},
		{"unknown status", domain.Filing{Status: "archived", BusinessID: "biz_1"}, false, "unknown states are not resumable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, filing.IsIncomplete(tt.filing), tt.explanation)
		})
	}
}

func standardFiling(id string, vehicles ...string) domain.Filing {
	return domain.Filing{
		ID:         id,
		Status:     domain.StatusDraft,
		FilingType: domain.FilingStandard,
		TaxYear:    2025,
		BusinessID: "biz_1",
		VehicleIDs: vehicles,
	}
}

func TestDetectDuplicate_Standard(t *testing.T) {
	candidate := filing.Candidate{
		FilingType: domain.FilingStandard,
		TaxYear:    2025,
		BusinessID: "biz_1",
		VehicleIDs: []string{"v1", "v2", "v3"},
	}

	tests := []struct {
		name       string
		existing   []domain.Filing
		expectedID string
	}{
		{
			name:       "exact match",
			existing:   []domain.Filing{standardFiling("fil_1", "v1", "v2", "v3")},
			expectedID: "fil_1",
		},
		{
			name:       "different order still matches",
			existing:   []domain.Filing{standardFiling("fil_1", "v3", "v1", "v2")},
			expectedID: "fil_1",
		},
		{
			name:     "subset does not match",
			existing: []domain.Filing{standardFiling("fil_1", "v1", "v2")},
		},
		{
			name:     "superset does not match",
			existing: []domain.Filing{standardFiling("fil_1", "v1", "v2", "v3", "v4")},
		},
		{
			name: "different business does not match",
			existing: []domain.Filing{func() domain.Filing {
				f := standardFiling("fil_1", "v1", "v2", "v3")
				f.BusinessID = "biz_2"
				return f
			}()},
		},
		{
			name: "different tax year does not match",
			existing: []domain.Filing{func() domain.Filing {
				f := standardFiling("fil_1", "v1", "v2", "v3")
				f.TaxYear = 2024
				return f
			}()},
		},
		{
			name: "completed filing is ignored",
			existing: []domain.Filing{func() domain.Filing {
				f := standardFiling("fil_1", "v1", "v2", "v3")
				f.Status = domain.StatusCompleted
				return f
			}()},
		},
		{
			name: "refund with same vehicles is a different filing",
			existing: []domain.Filing{func() domain.Filing {
				f := standardFiling("fil_1", "v1", "v2", "v3")
				f.FilingType = domain.FilingRefund
				return f
			}()},
		},
		{
			name: "first match wins",
			existing: []domain.Filing{
				standardFiling("fil_0", "v9"),
				standardFiling("fil_1", "v2", "v1", "v3"),
				standardFiling("fil_2", "v1", "v2", "v3"),
			},
			expectedID: "fil_1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := filing.DetectDuplicate(candidate, tt.existing)
			if tt.expectedID == "" {
				assert.False(t, ok)
				assert.Empty(t, got.ID)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.expectedID, got.ID)
		})
	}
}

func TestDetectDuplicate_InvariantToVehicleOrder(t *testing.T) {
	ids := []string{"v1", "v2", "v3", "v4"}
	existing := []domain.Filing{standardFiling("fil_1", ids...)}

	permutations := [][]string{
		{"v1", "v2", "v3", "v4"},
		{"v4", "v3", "v2", "v1"},
		{"v2", "v4", "v1", "v3"},
		{"v3", "v1", "v4", "v2"},
	}
	for _, p := range permutations {
		got, ok := filing.DetectDuplicate(filing.Candidate{
			FilingType: domain.FilingStandard,
			TaxYear:    2025,
			BusinessID: "biz_1",
			VehicleIDs: p,
		}, existing)
		require.True(t, ok, "%v should match", p)
		assert.Equal(t, "fil_1", got.ID)
	}
}

func TestDetectDuplicate_RepeatedIDsCompareAsSet(t *testing.T) {
	existing := []domain.Filing{standardFiling("fil_1", "v1", "v2")}

	_, ok := filing.DetectDuplicate(filing.Candidate{
		FilingType: domain.FilingStandard,
		TaxYear:    2025,
		BusinessID: "biz_1",
		VehicleIDs: []string{"v1", "v2", "v2"},
	}, existing)

	assert.True(t, ok)
}

func TestDetectDuplicate_Refund(t *testing.T) {
	existing := []domain.Filing{{
		ID:         "fil_r",
		Status:     domain.StatusActionRequired,
		FilingType: domain.FilingRefund,
		TaxYear:    2025,
		VehicleIDs: []string{"v7", "v8"},
	}}

	got, ok := filing.DetectDuplicate(filing.Candidate{
		FilingType: domain.FilingRefund,
		TaxYear:    2025,
		BusinessID: "biz_other",
		VehicleIDs: []string{"v8", "v7"},
	}, existing)

	require.True(t, ok, "refunds ignore the business")
	assert.Equal(t, "fil_r", got.ID)
}

func TestDetectDuplicate_Amendment(t *testing.T) {
	existing := []domain.Filing{
		{
			ID:               "fil_vin",
			Status:           domain.StatusDraft,
			FilingType:       domain.FilingAmendment,
			AmendmentType:    domain.AmendmentVINCorrection,
			TaxYear:          2025,
			AmendmentDetails: domain.VINCorrectionDetails{OriginalVIN: "1FUJGLDR0CLBP8834", CorrectedVIN: "1FUJGLDR0CLBP8835"},
		},
		{
			ID:               "fil_wi",
			Status:           domain.StatusSubmitted,
			FilingType:       domain.FilingAmendment,
			AmendmentType:    domain.AmendmentWeightIncrease,
			TaxYear:          2025,
			VehicleIDs:       []string{"v1"},
			AmendmentDetails: domain.WeightIncreaseDetails{VehicleID: "v1", OriginalWeightCategory: "A", NewWeightCategory: "F"},
		},
		{
			ID:               "fil_me",
			Status:           domain.StatusDraft,
			FilingType:       domain.FilingAmendment,
			AmendmentType:    domain.AmendmentMileageExceeded,
			TaxYear:          2025,
			AmendmentDetails: domain.MileageExceededDetails{VehicleID: "v2"},
		},
	}

	tests := []struct {
		name       string
		candidate  filing.Candidate
		expectedID string
	}{
		{
			name: "vin correction matches on original vin",
			candidate: filing.Candidate{
				FilingType:       domain.FilingAmendment,
				AmendmentType:    domain.AmendmentVINCorrection,
				TaxYear:          2025,
				AmendmentDetails: domain.VINCorrectionDetails{OriginalVIN: "1fujgldr0clbp8834", CorrectedVIN: "OTHER"},
			},
			expectedID: "fil_vin",
		},
		{
			name: "weight increase matches on vehicle id",
			candidate: filing.Candidate{
				FilingType:       domain.FilingAmendment,
				AmendmentType:    domain.AmendmentWeightIncrease,
				TaxYear:          2025,
				AmendmentDetails: domain.WeightIncreaseDetails{VehicleID: "v1", OriginalWeightCategory: "B", NewWeightCategory: "C"},
			},
			expectedID: "fil_wi",
		},
		{
			name: "mileage exceeded matches on vehicle id",
			candidate: filing.Candidate{
				FilingType:       domain.FilingAmendment,
				AmendmentType:    domain.AmendmentMileageExceeded,
				TaxYear:          2025,
				AmendmentDetails: domain.MileageExceededDetails{VehicleID: "v2"},
			},
			expectedID: "fil_me",
		},
		{
			name: "different sub-type does not match",
			candidate: filing.Candidate{
				FilingType:       domain.FilingAmendment,
				AmendmentType:    domain.AmendmentMileageExceeded,
				TaxYear:          2025,
				AmendmentDetails: domain.MileageExceededDetails{VehicleID: "v1"},
			},
		},
		{
			name: "different tax year does not match",
			candidate: filing.Candidate{
				FilingType:       domain.FilingAmendment,
				AmendmentType:    domain.AmendmentWeightIncrease,
				TaxYear:          2024,
				AmendmentDetails: domain.WeightIncreaseDetails{VehicleID: "v1"},
			},
		},
		{
			name: "missing key never matches",
			candidate: filing.Candidate{
				FilingType:    domain.FilingAmendment,
				AmendmentType: domain.AmendmentMileageExceeded,
				TaxYear:       2025,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := filing.DetectDuplicate(tt.candidate, existing)
			if tt.expectedID == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.expectedID, got.ID)
		})
	}
}

func TestDetectDuplicate_NoExistingFilings(t *testing.T) {
	_, ok := filing.DetectDuplicate(filing.Candidate{FilingType: domain.FilingStandard, TaxYear: 2025}, nil)
	assert.False(t, ok)
}
