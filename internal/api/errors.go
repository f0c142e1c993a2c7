package api

import (
	"errors"
	"fmt"
)

// APIError is the structured error payload the backend returns on failures.
// Field-level slices carry validation messages keyed by form field.
type APIError struct {
	StatusCode int      `json:"-"`
	ErrorMsg   string   `json:"error"`
	Email      []string `json:"email"`
	Password   []string `json:"password"`
}

func (e *APIError) Error() string {
	if e.ErrorMsg != "" {
		return fmt.Sprintf("api: %s (status %d)", e.ErrorMsg, e.StatusCode)
	}
	return fmt.Sprintf("api: request failed with status %d", e.StatusCode)
}

// Message flattens the payload into a single human-readable string.
// Precedence: general error, then the first field-specific message,
// then the caller's fallback.
func (e *APIError) Message(fallback string) string {
	if e.ErrorMsg != "" {
		return e.ErrorMsg
	}
	if len(e.Email) > 0 && e.Email[0] != "" {
		return e.Email[0]
	}
	if len(e.Password) > 0 && e.Password[0] != "" {
		return e.Password[0]
	}
	return fallback
}

// ExtractMessage pulls a displayable message out of any error returned by
// the client, falling back for network errors and unexpected payloads.
func ExtractMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message(fallback)
	}
	return fallback
}
