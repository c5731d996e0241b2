// Package retry implements the bounded retry policy wrapped around flaky
// page-automation actions.
package retry

import (
	"context"
	"time"
)

// Policy controls attempt count, spacing, and the diagnostic hook for one
// class of retried actions.
type Policy struct {
	MaxAttempts int
	Wait        time.Duration

	// OnFailure runs after a failed attempt while retries remain, typically to
	// capture a diagnostic snapshot. It never runs after the final attempt.
	OnFailure func(ctx context.Context, attempt int, err error)
}

// Do runs action up to p.MaxAttempts times, waiting p.Wait between attempts,
// and returns the first success. After the final failed attempt the last error
// is returned without invoking the failure hook again.
func Do[T any](ctx context.Context, p Policy, action func(context.Context) (T, error)) (T, error) {
	var zero T

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		value, err := action(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		if p.OnFailure != nil {
			p.OnFailure(ctx, attempt, err)
		}

		if p.Wait > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(p.Wait):
			}
		} else if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}

// Run is Do for actions with no result value.
func Run(ctx context.Context, p Policy, action func(context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, action(ctx)
	})
	return err
}
