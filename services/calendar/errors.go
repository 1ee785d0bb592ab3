package calendar

import (
	"fmt"
	"time"
)

// CircuitOpenError is returned while the breaker is open; the wrapped remote
// operation was not invoked.
type CircuitOpenError struct {
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("calendar circuit breaker is open, retry after %s", e.RetryAfter)
}

// ExternalServiceError is returned when a remote calendar call failed after
// exhausting retries. The local appointment state stays authoritative.
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("remote calendar %s failed: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
