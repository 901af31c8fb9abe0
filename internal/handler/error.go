// Package handler holds the HTTP error envelope shared by the API handlers.
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/middleware"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse writes err to the client. Internal errors are logged with
// their detail and reported with a generic message.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)
	logError(r, err, code, status)

	writeError(w, r, status, errorDetail{
		Code:    code,
		Message: domain.ErrorMessage(err),
	})
}

// ValidationErrorResponse writes field-level validation failures as a 400.
// Errors that are not *domain.ValidationError fall back to ErrorResponse.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	fields := domain.GetValidationFields(err)
	if fields == nil {
		ErrorResponse(w, r, err)
		return
	}

	logError(r, err, domain.EINVALID, http.StatusBadRequest)
	writeError(w, r, http.StatusBadRequest, errorDetail{
		Code:    domain.EINVALID,
		Message: "Validation failed",
		Fields:  fields,
	})
}

// NotFoundResponse answers unmatched routes.
func NotFoundResponse(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(w, r, domain.NotFound("router.fallback", "route", r.Method+" "+r.URL.Path))
}

// InternalErrorResponse logs err and answers with a generic 500.
func InternalErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	ErrorResponse(w, r, domain.Internal(err, "", "An unexpected error occurred"))
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ETOOLARGE:
		return http.StatusRequestEntityTooLarge
	case domain.EUNPROCESSABLE:
		return http.StatusUnprocessableEntity
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	case domain.ENOTIMPL:
		return http.StatusNotImplemented
	case domain.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		middleware.GetLogger(r.Context()).Warn().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, detail errorDetail) {
	if !acceptsJSON(r) {
		http.Error(w, detail.Message, status)
		return
	}
	WriteJSON(w, r, status, errorBody{Error: detail})
}

func logError(r *http.Request, err error, code string, status int) {
	logger := middleware.GetLogger(r.Context())
	event := logger.Info()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("code", code).
		Str("op", domain.ErrorOp(err)).
		Int("status", status).
		Msg("request failed")
}

// acceptsJSON checks if the client prefers JSON responses.
func acceptsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.HasSuffix(r.URL.Path, ".json")
}
