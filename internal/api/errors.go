// Package api is the authenticated HTTP client for the storefront REST API.
// Every call gets the current bearer token attached; an authorization
// failure triggers at most one credential refresh no matter how many calls
// fail at once, and the calls that failed meanwhile are replayed in the
// order their failures were observed.
package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, api.ErrNotFound) to check.
var (
	ErrBadRequest   = errors.New("api: bad request")
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrForbidden    = errors.New("api: forbidden")
	ErrNotFound     = errors.New("api: not found")
	ErrConflict     = errors.New("api: conflict")
	ErrThrottled    = errors.New("api: throttled")
	ErrServerError  = errors.New("api: server error")
)

// Pipeline errors.
var (
	// ErrSessionExpired wraps every failure of the credential refresh. The
	// credential store has been logged out by the time a caller sees it.
	ErrSessionExpired = errors.New("api: session expired")

	// ErrRefreshWaitTimeout is returned to a call that waited in the refresh
	// queue longer than the request timeout.
	ErrRefreshWaitTimeout = errors.New("api: timed out waiting for credential refresh")

	// ErrTimeout marks calls that exceeded the client's request timeout.
	ErrTimeout = errors.New("api: request timed out")
)

// APIError is returned for non-2xx responses. It carries the status and raw
// body so callers can inspect server-provided details.
type APIError struct {
	StatusCode int
	RequestID  string
	Data       []byte
	Err        error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("api: HTTP %d (request-id: %s): %s", e.StatusCode, e.RequestID, e.Data)
	}

	return fmt.Sprintf("api: HTTP %d: %s", e.StatusCode, e.Data)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status of err if it is (or wraps) an
// *APIError, otherwise 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for codes without a dedicated sentinel.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}
