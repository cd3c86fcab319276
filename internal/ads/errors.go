package ads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// Common errors returned by the Ads client.
var (
	// ErrNoCredentials is returned when no refresh token is available for
	// the user making the call.
	ErrNoCredentials = errors.New("no Google Ads credentials for user")
	// ErrNoDeveloperToken is returned when the developer token is not
	// configured.
	ErrNoDeveloperToken = errors.New("developer token not configured")
)

// APIError is a failed Google Ads API call.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Status     string `json:"status,omitempty"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("ads api: %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// Retryable reports whether the call may succeed on retry: rate limits,
// server errors, and transient transport failures.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// googleErrorBody is the error envelope Google APIs return.
type googleErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// newAPIError builds an APIError from a non-2xx response body.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    string(body),
	}

	var parsed googleErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
		apiErr.Status = parsed.Error.Status
	}

	return apiErr
}

// IsRetryable reports whether an error from the client is worth retrying.
// Transport-level failures (timeouts, refused connections) are retryable;
// API errors defer to their status code.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}
