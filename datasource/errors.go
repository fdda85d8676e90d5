package datasource

import (
	"errors"
	"fmt"
)

// Sentinel errors for every failure class a fetch can surface. Callers
// inspect them with errors.Is; wrapped detail (status code, attempt count,
// transport message) rides in the error text.
var (
	// ErrMissingCredential is returned when no API key is configured. No
	// network call is made.
	ErrMissingCredential = errors.New("missing API key")

	// ErrInvalidInput is returned when the city is empty after trimming. No
	// network call is made.
	ErrInvalidInput = errors.New("city must not be empty")

	// ErrCityNotFound is returned on HTTP 404. Never retried.
	ErrCityNotFound = errors.New("city not found")

	// ErrInvalidCredential is returned on HTTP 401. Never retried.
	ErrInvalidCredential = errors.New("API key rejected")

	// ErrRetriesExhausted is returned when the final attempt still saw a
	// retryable status (429 or 5xx).
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrTimeoutExhausted is returned when every attempt timed out.
	ErrTimeoutExhausted = errors.New("timed out on every attempt")

	// ErrUnexpectedStatus is returned for any other non-200 status. Never
	// retried.
	ErrUnexpectedStatus = errors.New("unexpected API status")

	// ErrConnection is returned for transport failures and malformed
	// response bodies. Never retried.
	ErrConnection = errors.New("connection or data error")

	// ErrRetryLogicExhausted is the defensive fallback for a retry loop that
	// ends without returning. Should be unreachable.
	ErrRetryLogicExhausted = errors.New("retry loop ended without a result")
)

// StatusError reports an HTTP outcome together with the error kind that
// classified it, so callers can both match the kind with errors.Is and read
// the status code that triggered it.
type StatusError struct {
	Kind     error
	Status   int
	Attempts int
}

func (e *StatusError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("%s after %d attempts (last status %d)", e.Kind, e.Attempts, e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Kind
}
