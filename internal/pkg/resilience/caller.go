package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	domainErrors "github.com/omnicart/fulfillment/internal/domain/errors"
)

// Policy bounds a synchronous cross-service call: per-attempt timeout, a
// fixed retry budget for infrastructure failures, and a circuit breaker that
// short-circuits once the failure ratio is crossed.
type Policy struct {
	Timeout             time.Duration
	MaxRetries          int
	RetryDelay          time.Duration
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenFor      time.Duration
}

func (p Policy) normalized() Policy {
	if p.Timeout <= 0 {
		p.Timeout = 5 * time.Second
	}
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.RetryDelay <= 0 {
		p.RetryDelay = 100 * time.Millisecond
	}
	if p.BreakerMinRequests == 0 {
		p.BreakerMinRequests = 5
	}
	if p.BreakerFailureRatio <= 0 || p.BreakerFailureRatio > 1 {
		p.BreakerFailureRatio = 0.5
	}
	if p.BreakerOpenFor <= 0 {
		p.BreakerOpenFor = 30 * time.Second
	}
	return p
}

// PermanentError marks a domain-level outcome (e.g. a 4xx response) that must
// not be retried and must not count against the breaker.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so the caller surfaces it immediately.
func Permanent(err error) error {
	return &PermanentError{Err: err}
}

// Caller executes functions under one named resiliency policy. Callers are
// safe for concurrent use; breaker state is shared across goroutines.
type Caller struct {
	service string
	policy  Policy
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

// NewCaller builds a resilient caller for the named downstream service.
func NewCaller(service string, policy Policy, logger *slog.Logger) *Caller {
	policy = policy.normalized()
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        service,
		MaxRequests: 1,
		Timeout:     policy.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < policy.BreakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= policy.BreakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("service", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	return &Caller{service: service, policy: policy, breaker: breaker, logger: logger}
}

// Do invokes fn under timeout, retry and breaker control. fn receives a
// context bounded by the per-attempt timeout. Domain outcomes wrapped with
// Permanent are returned as-is; infrastructure failures are retried up to the
// budget and then surfaced as an ExternalAPIError. An open breaker fails fast
// with ErrServiceUnavailable.
func (c *Caller) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		var permanent *PermanentError
		_, err := c.breaker.Execute(func() (struct{}, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
			defer cancel()

			err := fn(attemptCtx)
			if err == nil {
				return struct{}{}, nil
			}
			if errors.As(err, &permanent) {
				// A definitive answer from the dependency, not a failure.
				return struct{}{}, nil
			}
			return struct{}{}, err
		})
		if permanent != nil {
			return permanent.Err
		}
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %s", domainErrors.ErrServiceUnavailable, c.service)
		}

		lastErr = err
		c.logger.Warn("call attempt failed",
			slog.String("service", c.service),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()),
		)

		if attempt < c.policy.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.policy.RetryDelay):
			}
		}
	}

	var apiErr *domainErrors.ExternalAPIError
	if errors.As(lastErr, &apiErr) {
		return lastErr
	}
	return &domainErrors.ExternalAPIError{Service: c.service, Err: lastErr}
}
