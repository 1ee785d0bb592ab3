package flow

import (
	"errors"
	"fmt"
)

// ErrFlowNotFound is returned when no active flow exists for a key.
var ErrFlowNotFound = errors.New("no active booking flow found")

// ValidationError reports missing or malformed input. Local and immediate,
// never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// InvalidTransitionError reports a requested stage that is not reachable from
// the flow's current stage.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// StaleFlowStateError reports a failed optimistic concurrency check: the flow
// changed between read and write. Callers should refetch and retry.
type StaleFlowStateError struct {
	Expected string
	Actual   string
}

func (e *StaleFlowStateError) Error() string {
	return fmt.Sprintf("flow state changed concurrently: expected %s, found %s", e.Expected, e.Actual)
}

// BookingConflictError reports that the chosen slot is no longer free at
// confirmation time. Expected and recoverable; the caller should offer a new
// slot.
type BookingConflictError struct {
	ProfessionalID string
	Message        string
}

func (e *BookingConflictError) Error() string {
	return fmt.Sprintf("booking conflict for professional %s: %s", e.ProfessionalID, e.Message)
}
