package inference

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNoEndpoint is returned when the service base URL is missing.
	ErrNoEndpoint = errors.New("inference: detection service URL required")

	// ErrEmptyFrame is returned when a zero-byte frame is submitted.
	ErrEmptyFrame = errors.New("inference: empty frame")
)

// Transient status kinds surfaced to the UI when a cycle fails.
const (
	KindUnreachable = "service_unreachable"
	KindTimeout     = "service_timeout"
	KindResponse    = "service_error"
)

// ConnectionError indicates the detection service could not be reached.
type ConnectionError struct {
	Err error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("inference: service unreachable: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError indicates the service did not answer within the budget.
type TimeoutError struct {
	Err error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("inference: service timeout: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *TimeoutError) Unwrap() error { return e.Err }

// ResponseError indicates an unsuccessful or malformed service payload.
type ResponseError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("inference: service error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("inference: service error: %s", e.Message)
}

// Kind classifies a detection failure into a transient status string.
// Unknown errors count as response errors.
func Kind(err error) string {
	var connErr *ConnectionError
	var timeoutErr *TimeoutError
	switch {
	case errors.As(err, &timeoutErr):
		return KindTimeout
	case errors.As(err, &connErr):
		return KindUnreachable
	default:
		return KindResponse
	}
}
