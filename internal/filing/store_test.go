package filing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/filing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDetector_Check(t *testing.T) {
	ctx := context.Background()
	candidate := filing.Candidate{
		FilingType: domain.FilingStandard,
		TaxYear:    2025,
		BusinessID: "biz_1",
		VehicleIDs: []string{"v2", "v1"},
	}

	tests := []struct {
		name      string
		userID    string
		setupMock func(*filing.MockStore)
		wantID    string
		wantCode  string
	}{
		{
			name:   "returns duplicate with progress",
			userID: "user_1",
			setupMock: func(m *filing.MockStore) {
				m.EXPECT().
					ListByUser(ctx, "user_1").
					Return([]domain.Filing{standardFiling("fil_1", "v1", "v2")}, nil)
			},
			wantID: "fil_1",
		},
		{
			name:   "no duplicate",
			userID: "user_1",
			setupMock: func(m *filing.MockStore) {
				m.EXPECT().
					ListByUser(ctx, "user_1").
					Return([]domain.Filing{standardFiling("fil_1", "v1")}, nil)
			},
		},
		{
			name:   "store failure is internal",
			userID: "user_1",
			setupMock: func(m *filing.MockStore) {
				m.EXPECT().
					ListByUser(ctx, gomock.Any()).
					Return(nil, errors.New("connection refused"))
			},
			wantCode: domain.EINTERNAL,
		},
		{
			name:      "missing user is rejected before loading",
			userID:    "",
			setupMock: func(m *filing.MockStore) {},
			wantCode:  domain.EINVALID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := filing.NewMockStore(ctrl)
			tt.setupMock(store)

			match, err := filing.NewDetector(store).Check(ctx, tt.userID, candidate)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, domain.ErrorCode(err))
				assert.Nil(t, match)
				return
			}
			require.NoError(t, err)
			if tt.wantID == "" {
				assert.Nil(t, match)
				return
			}
			require.NotNil(t, match)
			assert.Equal(t, tt.wantID, match.Filing.ID)
			assert.Equal(t, 2, match.Progress.Completed, "business and vehicles entered")
		})
	}
}

func TestDetector_Check_PropagatesCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := filing.NewMockStore(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store.EXPECT().ListByUser(ctx, "user_1").Return(nil, context.Canceled)

	_, err := filing.NewDetector(store).Check(ctx, "user_1", filing.Candidate{})

	assert.ErrorIs(t, err, context.Canceled)
}
