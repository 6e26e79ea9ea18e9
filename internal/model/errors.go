package model

import (
	"fmt"
	"time"
)

// Error taxonomy for a scan run. Every kind funnels to the same terminal
// Failed behavior; callers distinguish them with errors.As when they need to.

// ValidationError reports bad client input. No network call was attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Reason)
}

// TimeoutError reports that the client-side deadline elapsed before the
// analyzer responded. The backend scan may still be running; the client only
// stopped waiting for it.
type TimeoutError struct {
	Deadline time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("scan timed out after %s", e.Deadline)
}

// NetworkError reports a transport-level failure (DNS, connection refused).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError reports a non-2xx analyzer response. Message is extracted
// best-effort from the body's error/message fields.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("analyzer returned status %d", e.StatusCode)
}

// ParseError reports a 2xx response whose body was not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing analyzer response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
