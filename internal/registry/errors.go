// Package registry provides the HTTP client for the document metadata API.
// It owns credential propagation (every outbound call reads the current
// session at call time) and error classification. It never retries and never
// refreshes tokens — a 401 is surfaced verbatim and the caller decides what
// redirect-to-login means.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, registry.ErrUnauthorized) to check.
var (
	ErrBadRequest    = errors.New("registry: bad request")
	ErrUnauthorized  = errors.New("registry: unauthorized")
	ErrForbidden     = errors.New("registry: forbidden")
	ErrNotFound      = errors.New("registry: not found")
	ErrConflict      = errors.New("registry: conflict")
	ErrUnprocessable = errors.New("registry: unprocessable entity")
	ErrServerError   = errors.New("registry: server error")
)

// APIError wraps a sentinel error with the HTTP status code and the error
// detail payload the metadata API returned. The response is preserved
// verbatim — no retry, no rewriting — so callers can act on the exact
// status the server sent.
type APIError struct {
	StatusCode int
	Detail     string // extracted from the {"detail": ...} payload when present
	Body       string // raw response body, for payloads with no detail field
	Err        error  // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("registry: HTTP %d: %s", e.StatusCode, e.Detail)
	}

	return fmt.Sprintf("registry: HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ParseError reports a response body that did not match the expected schema.
// Shape mismatches fail fast here instead of leaking half-decoded entities
// into the rest of the subsystem.
type ParseError struct {
	Resource string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("registry: decoding %s response: %v", e.Resource, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// errorDetail is the metadata API's error payload shape. The detail field is
// a string for simple errors and a structured array for validation errors,
// so it is captured raw and stringified.
type errorDetail struct {
	Detail json.RawMessage `json:"detail"`
}

// newAPIError builds an APIError from a non-2xx response body.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       string(body),
		Err:        classifyStatus(statusCode),
	}

	var payload errorDetail
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			apiErr.Detail = s
		} else {
			apiErr.Detail = string(payload.Detail)
		}
	}

	return apiErr
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for 2xx success codes.
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
	case http.StatusUnprocessableEntity:
		return ErrUnprocessable
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}
