package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

const sentryFlushTimeout = 2 * time.Second

// SentryConfig holds configuration for Sentry error tracking
type SentryConfig struct {
	DSN         string
	Enabled     bool
	Environment string
	Release     string

	// SampleRate is the share of errors sent, 0.0 to 1.0. Zero means 1.0.
	SampleRate       float64
	TracesSampleRate float64
	Debug            bool
}

var sentryEnabled atomic.Bool

// InitSentry initializes the Sentry client.
// Returns a cleanup function that flushes buffered events on shutdown.
func InitSentry(cfg SentryConfig, logger zerolog.Logger) (func(), error) {
	sentryEnabled.Store(false)
	noop := func() {}

	if !cfg.Enabled {
		logger.Info().Msg("Sentry disabled (SENTRY_ENABLED=false)")
		return noop, nil
	}
	if cfg.DSN == "" {
		logger.Warn().Msg("Sentry DSN not configured, disabling error tracking")
		return noop, nil
	}

	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		BeforeSend:       scrubEvent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Sentry: %w", err)
	}
	sentryEnabled.Store(true)

	logger.Info().
		Str("environment", cfg.Environment).
		Str("release", cfg.Release).
		Float64("sample_rate", sampleRate).
		Msg("Sentry initialized")

	return func() { sentry.Flush(sentryFlushTimeout) }, nil
}

// IsEnabled returns whether Sentry is currently enabled
func IsEnabled() bool {
	return sentryEnabled.Load()
}

// scrubEvent drops request bodies and cookies. Quote bodies carry VINs and
// business addresses.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request != nil {
		event.Request.Data = ""
		event.Request.Cookies = ""
		delete(event.Request.Headers, "Cookie")
		delete(event.Request.Headers, "Authorization")
	}
	return event
}

// CaptureErrorFromContext sends err through the request's hub, tagged with
// the request and filer IDs found in ctx. Safe to call when disabled.
func CaptureErrorFromContext(ctx context.Context, err error, extras map[string]interface{}) {
	if !IsEnabled() || err == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		if id := domain.RequestIDFromContext(ctx); id != "" {
			scope.SetTag("request_id", id)
		}
		if id := domain.FilerIDFromContext(ctx); id != "" {
			scope.SetTag("filer_id", id)
		}
		if code := domain.ErrorCode(err); code != "" {
			scope.SetTag("error_code", code)
		}
		scope.SetExtras(extras)
		hub.CaptureException(err)
	})
}

// SentryMiddleware gives each request its own hub and reports panics
// before re-raising them for the recovery middleware.
func SentryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsEnabled() {
				next.ServeHTTP(w, r)
				return
			}

			hub := sentry.CurrentHub().Clone()
			hub.Scope().SetRequest(r)
			ctx := sentry.SetHubOnContext(r.Context(), hub)

			defer func() {
				if rec := recover(); rec != nil {
					if rec != http.ErrAbortHandler {
						hub.RecoverWithContext(ctx, rec)
						hub.Flush(sentryFlushTimeout)
					}
					panic(rec)
				}
			}()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
