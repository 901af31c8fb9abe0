package telemetry

import (
	"context"
	"time"

	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/pricing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for pricing and filing activity.
type BusinessMetrics struct {
	// Pricing
	QuotesTotal     *prometheus.CounterVec
	QuoteFailures   *prometheus.CounterVec
	QuoteGrandTotal *prometheus.HistogramVec
	QuoteTax        *prometheus.HistogramVec
	QuoteDuration   *prometheus.HistogramVec
	QuoteVehicles   *prometheus.HistogramVec
	AmendmentQuotes *prometheus.CounterVec

	// Filing intelligence
	DuplicateChecks    *prometheus.CounterVec
	DuplicatesDetected *prometheus.CounterVec

	// Events
	EventsPublished *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec
}

// NewBusinessMetrics creates and registers all business metrics on reg.
// A nil reg uses the default registerer.
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "haulfile"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	subsystem := "business"
	factory := promauto.With(reg)

	return &BusinessMetrics{
		// =======================================================================
		// Pricing
		// =======================================================================
		QuotesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "quotes_total",
				Help:      "Total successful filing price quotes",
			},
			[]string{"filing_type", "table_version"},
		),
		QuoteFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "quote_failures_total",
				Help:      "Total quotes that failed and were reported as soft failures",
			},
			[]string{"filing_type", "code"},
		),
		QuoteGrandTotal: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "quote_grand_total_dollars",
				Help:      "Grand total of successful quotes",
				Buckets:   []float64{0, 35, 100, 250, 550, 1000, 2500, 5000, 10000, 25000},
			},
			[]string{"filing_type"},
		),
		QuoteTax: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "quote_tax_dollars",
				Help:      "Heavy vehicle use tax portion of successful quotes",
				Buckets:   []float64{0, 50, 100, 250, 550, 1000, 2500, 5000, 10000},
			},
			[]string{"filing_type"},
		),
		QuoteDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "quote_duration_seconds",
				Help:      "Quote latency, dominated by the sales tax provider",
				Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"filing_type"},
		),
		QuoteVehicles: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "quote_vehicles",
				Help:      "Vehicles per quoted filing",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
			},
			[]string{"filing_type"},
		),
		AmendmentQuotes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "amendment_quotes_total",
				Help:      "Total amendment price quotes",
			},
			[]string{"amendment_type"},
		),

		// =======================================================================
		// Filing intelligence
		// =======================================================================
		DuplicateChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "duplicate_checks_total",
				Help:      "Total duplicate filing checks",
			},
			[]string{"filing_type", "outcome"}, // outcome: duplicate, unique, error
		),
		DuplicatesDetected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "duplicates_detected_total",
				Help:      "Total candidate filings matched to an incomplete filing, by that filing's status",
			},
			[]string{"filing_type", "status"},
		),

		// =======================================================================
		// Events
		// =======================================================================
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_published_total",
				Help:      "Total domain events published",
			},
			[]string{"subject"},
		),
		EventsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_failed_total",
				Help:      "Total domain events that could not be published",
			},
			[]string{"subject"},
		),
	}
}

var _ pricing.Recorder = (*BusinessMetrics)(nil)

// RecordQuote implements pricing.Recorder.
func (m *BusinessMetrics) RecordQuote(filingType string, result *pricing.PricingResult, elapsed time.Duration) {
	m.QuotesTotal.WithLabelValues(filingType, result.TableVersion).Inc()
	m.QuoteDuration.WithLabelValues(filingType).Observe(elapsed.Seconds())
	m.QuoteGrandTotal.WithLabelValues(filingType).Observe(result.GrandTotal.InexactFloat64())
	m.QuoteTax.WithLabelValues(filingType).Observe(result.TotalTax.InexactFloat64())
	if n := len(result.VehicleBreakdown); n > 0 {
		m.QuoteVehicles.WithLabelValues(filingType).Observe(float64(n))
	}
}

// RecordFailure implements pricing.Recorder. Failures are also sent to
// Sentry when it is enabled.
func (m *BusinessMetrics) RecordFailure(ctx context.Context, filingType string, err error) {
	m.QuoteFailures.WithLabelValues(filingType, domain.ErrorCode(err)).Inc()
	CaptureErrorFromContext(ctx, err, map[string]interface{}{
		"filing_type": filingType,
		"op":          domain.ErrorOp(err),
	})
}

// RecordDuplicateCheck counts one duplicate check and its outcome.
func (m *BusinessMetrics) RecordDuplicateCheck(filingType, outcome string) {
	m.DuplicateChecks.WithLabelValues(filingType, outcome).Inc()
}

// RecordDuplicate counts a detected duplicate by the existing filing's status.
func (m *BusinessMetrics) RecordDuplicate(filingType, status string) {
	m.DuplicatesDetected.WithLabelValues(filingType, status).Inc()
}

// RecordAmendmentQuote counts one amendment quote.
func (m *BusinessMetrics) RecordAmendmentQuote(amendmentType string) {
	m.AmendmentQuotes.WithLabelValues(amendmentType).Inc()
}

// RecordEvent counts a publish attempt on subject.
func (m *BusinessMetrics) RecordEvent(subject string, err error) {
	if err != nil {
		m.EventsFailed.WithLabelValues(subject).Inc()
		return
	}
	m.EventsPublished.WithLabelValues(subject).Inc()
}
