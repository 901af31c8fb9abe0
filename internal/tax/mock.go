package tax

import (
	"context"
	"sync"
)

// MockCalculator is a test implementation of Calculator.
type MockCalculator struct {
	CalculateTaxFunc func(ctx context.Context, params Params) (*Result, error)

	mu    sync.Mutex
	calls []Params
}

// NewMockCalculator creates a new mock tax calculator for testing.
func NewMockCalculator() *MockCalculator {
	return &MockCalculator{}
}

// CalculateTax delegates to the configured function or returns a zero result.
func (m *MockCalculator) CalculateTax(ctx context.Context, params Params) (*Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, params)
	m.mu.Unlock()

	if m.CalculateTaxFunc != nil {
		return m.CalculateTaxFunc(ctx, params)
	}
	return Zero(), nil
}

// Calls returns the params of every CalculateTax call so far.
func (m *MockCalculator) Calls() []Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Params(nil), m.calls...)
}
