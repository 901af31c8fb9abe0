package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/filing"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
)

// Querier is the subset of pgxpool.Pool the stores use.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// FilingStore implements filing.Store using PostgreSQL.
type FilingStore struct {
	db     Querier
	logger zerolog.Logger
}

// Compile-time check to ensure FilingStore implements filing.Store.
var _ filing.Store = (*FilingStore)(nil)

// NewFilingStore creates a new FilingStore instance.
func NewFilingStore(db Querier, logger zerolog.Logger) *FilingStore {
	return &FilingStore{
		db:     db,
		logger: logger.With().Str("component", "filing_store").Logger(),
	}
}

const listFilingsByUser = `
SELECT id, user_id, status, filing_type, amendment_type, tax_year,
       business_id, vehicle_ids, amendment_details, first_used_month,
       workflow, upload_id, payment_intent_id, updated_at
FROM filings
WHERE user_id = $1
ORDER BY updated_at DESC`

// filingRow mirrors a row of the filings table.
type filingRow struct {
	ID               string      `db:"id"`
	UserID           string      `db:"user_id"`
	Status           string      `db:"status"`
	FilingType       string      `db:"filing_type"`
	AmendmentType    pgtype.Text `db:"amendment_type"`
	TaxYear          int32       `db:"tax_year"`
	BusinessID       pgtype.Text `db:"business_id"`
	VehicleIDs       []string    `db:"vehicle_ids"`
	AmendmentDetails []byte      `db:"amendment_details"`
	FirstUsedMonth   pgtype.Text `db:"first_used_month"`
	Workflow         string      `db:"workflow"`
	UploadID         pgtype.Text `db:"upload_id"`
	PaymentIntentID  pgtype.Text `db:"payment_intent_id"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

// ListByUser returns the user's filings, most recently updated first.
// Rows with an unrecognized status or filing type are skipped.
func (s *FilingStore) ListByUser(ctx context.Context, userID string) ([]domain.Filing, error) {
	rows, err := s.db.Query(ctx, listFilingsByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("query filings: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[filingRow])
	if err != nil {
		return nil, fmt.Errorf("scan filings: %w", err)
	}

	filings := make([]domain.Filing, 0, len(records))
	for _, rec := range records {
		f, err := mapFilingRow(rec)
		if err != nil {
			s.logger.Warn().Err(err).Str("filing_id", rec.ID).Msg("skipping unreadable filing")
			continue
		}
		filings = append(filings, f)
	}
	return filings, nil
}

// Ping checks the database connection.
func (s *FilingStore) Ping(ctx context.Context) error {
	_, err := s.db.Exec(ctx, "SELECT 1")
	return err
}

// mapFilingRow converts a filings row to a domain Filing. Malformed
// amendment details are dropped rather than failing the row.
func mapFilingRow(r filingRow) (domain.Filing, error) {
	const op = "postgres.map_filing"

	status, ok := domain.ParseFilingStatus(r.Status)
	if !ok {
		return domain.Filing{}, domain.Errorf(domain.EINVALID, op, "unknown filing status: %s", r.Status)
	}
	filingType, ok := domain.ParseFilingType(r.FilingType)
	if !ok {
		return domain.Filing{}, domain.Errorf(domain.EINVALID, op, "unknown filing type: %s", r.FilingType)
	}

	f := domain.Filing{
		ID:              r.ID,
		UserID:          r.UserID,
		Status:          status,
		FilingType:      filingType,
		TaxYear:         int(r.TaxYear),
		BusinessID:      r.BusinessID.String,
		VehicleIDs:      r.VehicleIDs,
		FirstUsedMonth:  r.FirstUsedMonth.String,
		Workflow:        domain.Workflow(r.Workflow),
		UploadID:        r.UploadID.String,
		PaymentIntentID: r.PaymentIntentID.String,
		UpdatedAt:       r.UpdatedAt,
	}

	if r.AmendmentType.Valid {
		if at, ok := domain.ParseAmendmentType(r.AmendmentType.String); ok {
			f.AmendmentType = at
			f.AmendmentDetails, _ = domain.DecodeAmendmentDetails(at, r.AmendmentDetails)
		}
	}

	return f, nil
}
