package telemetry_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSentry_Disabled(t *testing.T) {
	cleanup, err := telemetry.InitSentry(telemetry.SentryConfig{Enabled: false}, zerolog.Nop())

	require.NoError(t, err)
	require.NotNil(t, cleanup)
	cleanup()
	assert.False(t, telemetry.IsEnabled())
}

func TestInitSentry_EnabledWithoutDSN(t *testing.T) {
	cleanup, err := telemetry.InitSentry(telemetry.SentryConfig{Enabled: true}, zerolog.Nop())

	require.NoError(t, err)
	cleanup()
	assert.False(t, telemetry.IsEnabled(), "missing DSN disables tracking")
}

func TestCaptureErrorFromContext_NoopWhenDisabled(t *testing.T) {
	_, err := telemetry.InitSentry(telemetry.SentryConfig{}, zerolog.Nop())
	require.NoError(t, err)

	ctx := domain.NewContextWithRequestID(context.Background(), "req-1")
	assert.NotPanics(t, func() {
		telemetry.CaptureErrorFromContext(ctx, errors.New("boom"), map[string]interface{}{"k": "v"})
		telemetry.CaptureErrorFromContext(ctx, nil, nil)
	})
}

func TestSentryMiddleware_PassThroughWhenDisabled(t *testing.T) {
	_, err := telemetry.InitSentry(telemetry.SentryConfig{}, zerolog.Nop())
	require.NoError(t, err)

	handler := telemetry.SentryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
