package filing

import (
	"context"
	"errors"

	"github.com/dukerupert/haulfile/internal/domain"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=filing

// Store reads a user's filings. The core never writes filings.
type Store interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Filing, error)
}

// ErrMissingUser is returned when a duplicate check has no user to scope to.
var ErrMissingUser = &domain.Error{Code: domain.EINVALID, Message: "User ID is required"}

// Match is a filing the candidate duplicates, with its progress.
type Match struct {
	Filing   domain.Filing
	Progress ProgressReport
}

// Detector runs duplicate checks against a user's stored filings.
type Detector struct {
	store Store
}

// NewDetector creates a detector reading from store.
func NewDetector(store Store) *Detector {
	return &Detector{store: store}
}

// Check loads the user's filings and looks for one the candidate
// duplicates. The result is advisory.
func (d *Detector) Check(ctx context.Context, userID string, c Candidate) (*Match, error) {
	const op = "filing.check_duplicate"

	if userID == "" {
		return nil, ErrMissingUser
	}

	existing, err := d.store.ListByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, domain.Internal(err, op, "failed to load filings")
	}

	f, ok := DetectDuplicate(c, existing)
	if !ok {
		return nil, nil
	}
	return &Match{Filing: f, Progress: Progress(f)}, nil
}
