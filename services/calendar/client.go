package calendar

import (
	"context"
	"errors"
	"net"
	"time"

	"clinicflow/models"
	"clinicflow/utils"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

// RemoteCalendar exposes the remote calendar operations on timed events
// identified by an opaque external id.
type RemoteCalendar interface {
	CreateEvent(ctx context.Context, clinicID string, ev *models.RemoteEvent) (*models.RemoteEvent, error)
	UpdateEvent(ctx context.Context, clinicID, eventID string, ev *models.RemoteEvent) (*models.RemoteEvent, error)
	DeleteEvent(ctx context.Context, clinicID, eventID string) error
	ListEvents(ctx context.Context, clinicID string, start, end time.Time) ([]models.RemoteEvent, error)
}

// ClientConfig tunes the resilient wrapper.
type ClientConfig struct {
	MaxRetries       int
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	RequestTimeout   time.Duration
	FailureThreshold int
	RecoveryTimeout  time.Duration
}

// Client wraps a RemoteCalendar with bounded retries, growing backoff and a
// circuit breaker. It implements RemoteCalendar itself, so callers never see
// the raw transport.
type Client struct {
	remote  RemoteCalendar
	breaker *CircuitBreaker

	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	timeout    time.Duration
}

func NewClient(remote RemoteCalendar, cfg ClientConfig) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 10 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = time.Minute
	}
	return &Client{
		remote:     remote,
		breaker:    NewCircuitBreaker(cfg.FailureThreshold, cfg.RecoveryTimeout),
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		maxDelay:   cfg.MaxDelay,
		timeout:    cfg.RequestTimeout,
	}
}

// Breaker exposes the breaker for observability.
func (c *Client) Breaker() *CircuitBreaker {
	return c.breaker
}

func (c *Client) CreateEvent(ctx context.Context, clinicID string, ev *models.RemoteEvent) (*models.RemoteEvent, error) {
	var created *models.RemoteEvent
	err := c.execute(ctx, "create", func(callCtx context.Context) error {
		var err error
		created, err = c.remote.CreateEvent(callCtx, clinicID, ev)
		return err
	})
	return created, err
}

func (c *Client) UpdateEvent(ctx context.Context, clinicID, eventID string, ev *models.RemoteEvent) (*models.RemoteEvent, error) {
	var updated *models.RemoteEvent
	err := c.execute(ctx, "update", func(callCtx context.Context) error {
		var err error
		updated, err = c.remote.UpdateEvent(callCtx, clinicID, eventID, ev)
		return err
	})
	return updated, err
}

func (c *Client) DeleteEvent(ctx context.Context, clinicID, eventID string) error {
	return c.execute(ctx, "delete", func(callCtx context.Context) error {
		return c.remote.DeleteEvent(callCtx, clinicID, eventID)
	})
}

func (c *Client) ListEvents(ctx context.Context, clinicID string, start, end time.Time) ([]models.RemoteEvent, error) {
	var events []models.RemoteEvent
	err := c.execute(ctx, "list", func(callCtx context.Context) error {
		var err error
		events, err = c.remote.ListEvents(callCtx, clinicID, start, end)
		return err
	})
	return events, err
}

// execute runs one remote operation under the breaker, retrying transient
// failures with a growing, capped delay. Backoff blocks only this call path.
func (c *Client) execute(ctx context.Context, op string, fn func(context.Context) error) error {
	logger := utils.GetLogger()

	if err := c.breaker.Allow(); err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := fn(callCtx)
		cancel()

		if err == nil {
			c.breaker.RecordSuccess()
			return nil
		}
		lastErr = err
		c.breaker.RecordFailure()

		if !isTransient(err) {
			logger.Warn("remote calendar call failed permanently",
				zap.String("op", op), zap.Error(err))
			return &ExternalServiceError{Op: op, Err: err}
		}
		if attempt == c.maxRetries {
			break
		}

		delay := c.backoffDelay(attempt)
		logger.Debug("retrying remote calendar call",
			zap.String("op", op), zap.Int("attempt", attempt), zap.Duration("delay", delay))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return &ExternalServiceError{Op: op, Err: ctx.Err()}
		}

		// Respect the breaker between attempts; it may have opened meanwhile.
		if err := c.breaker.Allow(); err != nil {
			return err
		}
	}

	logger.Warn("remote calendar call exhausted retries",
		zap.String("op", op), zap.Int("attempts", c.maxRetries), zap.Error(lastErr))
	return &ExternalServiceError{Op: op, Err: lastErr}
}

// backoffDelay grows linearly with the attempt count up to the cap.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := time.Duration(attempt) * c.baseDelay
	if delay > c.maxDelay {
		delay = c.maxDelay
	}
	return delay
}

// isTransient classifies a failure as retryable: server errors, rate limiting
// and timeouts. Everything else propagates immediately.
func isTransient(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 429 || gerr.Code >= 500
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
