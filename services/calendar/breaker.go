package calendar

import (
	"sync"
	"time"
)

// BreakerState is the circuit breaker's current mode.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "CLOSED"
	case BreakerOpen:
		return "OPEN"
	case BreakerHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreaker isolates a persistently failing remote calendar. After
// failureThreshold consecutive failures it opens and fails calls immediately;
// once recoveryTimeout elapses exactly one trial call is let through. A
// success closes the breaker and resets counters, a failure re-opens it.
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	recoveryTimeout  time.Duration

	state         BreakerState
	failures      int
	lastFailure   time.Time
	trialInFlight bool

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

func NewCircuitBreaker(failureThreshold int, recoveryTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		state:            BreakerClosed,
		now:              time.Now,
	}
}

// Allow reports whether a call may proceed. While open it returns
// CircuitOpenError until the recovery timeout elapses, after which a single
// half-open trial is admitted.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		elapsed := b.now().Sub(b.lastFailure)
		if elapsed < b.recoveryTimeout {
			return &CircuitOpenError{RetryAfter: b.recoveryTimeout - elapsed}
		}
		b.state = BreakerHalfOpen
		b.trialInFlight = true
		return nil
	case BreakerHalfOpen:
		if b.trialInFlight {
			return &CircuitOpenError{RetryAfter: b.recoveryTimeout}
		}
		b.trialInFlight = true
		return nil
	default:
		return nil
	}
}

// RecordSuccess resets all counters and closes the breaker.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.state = BreakerClosed
	b.trialInFlight = false
}

// RecordFailure counts a consecutive failure; it opens the breaker at the
// threshold, and immediately on a failed half-open trial.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()
	if b.state == BreakerHalfOpen || b.failures >= b.failureThreshold {
		b.state = BreakerOpen
	}
	b.trialInFlight = false
}

// State returns the breaker's current mode.
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// FailureCount returns the current consecutive failure count.
func (b *CircuitBreaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
