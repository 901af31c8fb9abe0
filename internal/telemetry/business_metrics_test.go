package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/pricing"
	"github.com/dukerupert/haulfile/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBusinessMetrics_RecordQuote(t *testing.T) {
	m := telemetry.NewBusinessMetrics("test", prometheus.NewRegistry())

	m.RecordQuote("standard", &pricing.PricingResult{
		TotalTax:         decimal.NewFromInt(860),
		GrandTotal:       decimal.RequireFromString("949.97"),
		TableVersion:     "2290-cap-u",
		VehicleBreakdown: make([]pricing.VehicleLine, 3),
	}, 25*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuotesTotal.WithLabelValues("standard", "2290-cap-u")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.QuoteGrandTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.QuoteVehicles))
}

func TestBusinessMetrics_RecordFailure(t *testing.T) {
	m := telemetry.NewBusinessMetrics("test", prometheus.NewRegistry())

	m.RecordFailure(context.Background(), "refund", domain.Errorf(domain.EUNAVAILABLE, "pricing.calculate", "sales tax down"))
	m.RecordFailure(context.Background(), "refund", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuoteFailures.WithLabelValues("refund", domain.EUNAVAILABLE)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuoteFailures.WithLabelValues("refund", domain.EINTERNAL)))
}

func TestBusinessMetrics_DuplicateAndEvents(t *testing.T) {
	m := telemetry.NewBusinessMetrics("test", prometheus.NewRegistry())

	m.RecordDuplicateCheck("standard", "duplicate")
	m.RecordDuplicateCheck("standard", "unique")
	m.RecordDuplicate("standard", "draft")
	m.RecordAmendmentQuote("weight_increase")
	m.RecordEvent("filing.priced", nil)
	m.RecordEvent("filing.priced", errors.New("nats: no responders"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DuplicateChecks.WithLabelValues("standard", "duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DuplicatesDetected.WithLabelValues("standard", "draft")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AmendmentQuotes.WithLabelValues("weight_increase")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("filing.priced")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsFailed.WithLabelValues("filing.priced")))
}
