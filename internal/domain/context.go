// Package domain provides the core filing types, error handling and context
// helpers for haulfile.
package domain

import "context"

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// filerContextKey stores the authenticated filer's user ID.
	filerContextKey contextKey = iota

	// requestIDContextKey stores the request ID for tracing.
	requestIDContextKey
)

// --- Filer Context Helpers ---

// NewContextWithFilerID returns a new context carrying the filer's user ID.
// Authentication happens upstream; the gateway forwards the ID it verified.
func NewContextWithFilerID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, filerContextKey, userID)
}

// FilerIDFromContext retrieves the filer's user ID from context.
// Returns empty string if none is present.
func FilerIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(filerContextKey).(string)
	return id
}

// --- Request ID Context Helpers ---

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}
