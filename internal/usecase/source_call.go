package usecase

import (
	"context"
	"fmt"
	"time"
)

// callWithTimeout bounds a source call even when the source ignores its context.
// A late result is discarded; the call itself is left to finish on its own.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		defer cancel()
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("%w: source panicked: %v", ErrSourceUnavailable, rec)}
			}
		}()
		value, err := fn(ctx)
		done <- result{value: value, err: err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrSourceUnavailable, ctx.Err())
	}
}
