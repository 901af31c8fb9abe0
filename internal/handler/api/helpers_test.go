package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/haulfile/internal/address"
	"github.com/dukerupert/haulfile/internal/pricing"
	"github.com/dukerupert/haulfile/internal/tax"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.September, 2, 15, 4, 5, 0, time.UTC)

type published struct {
	subject string
	payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, subject string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{subject, payload})
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

type fakeRecorder struct {
	mu         sync.Mutex
	amendments []string
	checks     []string
	duplicates []string
}

func (r *fakeRecorder) RecordAmendmentQuote(amendmentType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.amendments = append(r.amendments, amendmentType)
}

func (r *fakeRecorder) RecordDuplicateCheck(filingType, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, filingType+":"+outcome)
}

func (r *fakeRecorder) RecordDuplicate(filingType, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.duplicates = append(r.duplicates, filingType+":"+status)
}

func newPricingHandler(t *testing.T, calc tax.Calculator) (*PricingHandler, *fakePublisher, *fakeRecorder) {
	t.Helper()

	engine, err := pricing.NewEngine(pricing.Deps{SalesTax: calc, Logger: zerolog.Nop()})
	require.NoError(t, err)

	pub := &fakePublisher{}
	rec := &fakeRecorder{}
	h := NewPricingHandler(engine, address.NewBasicValidator(), pub, rec)
	h.now = func() time.Time { return fixedNow }
	return h, pub, rec
}

func postJSON(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return postJSONWithContext(t, context.Background(), h, path, body)
}

func postJSONWithContext(t *testing.T, ctx context.Context, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), rec.Body.String())
	return out
}

type errorEnvelope struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}
