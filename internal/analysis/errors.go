package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyImage indicates Analyze was called without image bytes.
	ErrEmptyImage = errors.New("empty image")
	// ErrUnexpectedResponse indicates a payload that matches no known shape.
	ErrUnexpectedResponse = errors.New("unexpected analysis response")
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("analysis backend returned status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed on retry.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// retryableError wraps transport failures that are worth another attempt.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func isRetryableError(err error) bool {
	var re *retryableError
	if errors.As(err, &re) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return false
}
