package middleware

import (
	"context"
	"net/http"

	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/rs/zerolog"
)

// WithRequestLogger creates middleware that injects a request-scoped logger into the context.
// The logger includes request metadata (request_id, method, path) and the filer id if known.
// This middleware should be placed after RequestID and FilerID in the middleware chain.
func WithRequestLogger(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lc := base.With().
				Str("method", r.Method).
				Str("path", r.URL.Path)

			if requestID := GetRequestID(r.Context()); requestID != "" {
				lc = lc.Str("request_id", requestID)
			}

			if filerID := domain.FilerIDFromContext(r.Context()); filerID != "" {
				lc = lc.Str("filer_id", filerID)
			}

			requestLogger := lc.Logger()
			ctx := requestLogger.WithContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLogger retrieves the request-scoped logger from the context.
// Without one it returns the fallback, or a disabled logger when none is given.
func GetLogger(ctx context.Context, fallback ...zerolog.Logger) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() != zerolog.Disabled {
		return l
	}
	if len(fallback) > 0 {
		return &fallback[0]
	}
	return l
}
