// Package errors defines the structured error envelope returned by the API.
package errors

import (
	"encoding/json"
	"net/http"
)

// Error codes returned in API responses.
const (
	CodeBadRequest         = "bad_request"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodeValidation         = "validation_failed"
	CodeGoogleNotLinked    = "google_not_linked"
	CodeUpstreamFailed     = "upstream_failed"
	CodeInternal           = "internal_error"
	CodeServiceUnavailable = "service_unavailable"
)

// APIError is the error body every failing endpoint returns.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

// New creates an APIError.
func New(code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// WithDetails attaches structured detail to the error.
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code string) int {
	switch code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeGoogleNotLinked:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUpstreamFailed:
		return http.StatusBadGateway
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Write serializes the error to the response with its mapped status.
func Write(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(err.Code))
	_ = json.NewEncoder(w).Encode(map[string]any{"error": err})
}
