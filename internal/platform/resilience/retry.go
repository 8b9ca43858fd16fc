package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryNotify is called before each backoff sleep.
type RetryNotify func(attempt int, err error, wait time.Duration)

// Retry runs op until it succeeds, returns an error that isTransient rejects, the
// attempt budget (MaxRetries+1) is spent, or ctx is done. Non-transient errors are
// returned unchanged on the first attempt.
func Retry[T any](
	ctx context.Context,
	cfg RetryConfig,
	isTransient func(error) bool,
	notify RetryNotify,
	op func(context.Context) (T, error),
) (T, error) {
	cfg = NormalizeRetryConfig(cfg)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.InitialInterval
	policy.MaxInterval = cfg.MaxInterval
	policy.Multiplier = 2
	policy.RandomizationFactor = 0.2

	attempt := 0
	operation := func() (T, error) {
		attempt++
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil || isTransient == nil || !isTransient(err) {
			return out, backoff.Permanent(err)
		}
		return out, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(cfg.MaxRetries + 1)),
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(func(err error, wait time.Duration) {
			notify(attempt, err, wait)
		}))
	}

	out, err := backoff.Retry(ctx, operation, opts...)
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	return out, err
}
