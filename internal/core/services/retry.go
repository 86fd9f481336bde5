package services

import (
	"context"
	"time"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/logger"
)

// DefaultSecondaryWait is used when a secondary rate limit response does
// not carry Retry-After.
const DefaultSecondaryWait = 60 * time.Second

// retrier repeats calls that fail with quota errors.
type retrier struct {
	gate *RateLimitGate
	opts options
}

// retryTransient runs call until it succeeds or fails with an error that
// waiting cannot fix. Primary rate limits wait on the gate for class,
// secondary rate limits wait for Retry-After. There is no attempt ceiling.
func retryTransient[T any](ctx context.Context, r *retrier, class domain.ResourceClass, op string, call func(context.Context) (T, error)) (T, error) {
	for attempt := 1; ; attempt++ {
		result, err := call(ctx)
		if err == nil {
			return result, nil
		}

		kind := domain.KindOf(err)
		switch kind {
		case domain.ErrorKindRateLimit:
			r.opts.recorder.Retry(kind)
			logger.Warn("%s: rate limit exceeded, waiting for the %s quota (attempt %d)", op, class, attempt)
			waited, gateErr := r.gate.checkAndWait(ctx, class)
			if gateErr != nil {
				var zero T
				return zero, gateErr
			}
			if waited == 0 {
				// The counter already recovered or the host does not report it.
				if err := r.opts.sleep(ctx, fallbackWait(err)); err != nil {
					var zero T
					return zero, err
				}
			}
		case domain.ErrorKindSecondaryRateLimit:
			r.opts.recorder.Retry(kind)
			wait := domain.RetryAfterOf(err)
			if wait <= 0 {
				wait = DefaultSecondaryWait
			}
			logger.Warn("%s: secondary rate limit hit, retrying in %s (attempt %d)", op, wait, attempt)
			if err := r.opts.sleep(ctx, wait); err != nil {
				var zero T
				return zero, err
			}
		default:
			return result, err
		}
	}
}

func fallbackWait(err error) time.Duration {
	if wait := domain.RetryAfterOf(err); wait > 0 {
		return wait
	}
	return MinResetWait
}
