package resilience

import (
	"fmt"

	"golang.org/x/sync/singleflight"
)

// SingleFlight collapses concurrent calls for the same key into one upstream request.
// The zero value is ready to use.
type SingleFlight[T any] struct {
	group singleflight.Group
}

func (g *SingleFlight[T]) Do(key string, fn func() (T, error)) (T, error, bool) {
	out, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err, shared
	}
	value, ok := out.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("singleflight %q: unexpected value type %T", key, out), shared
	}
	return value, nil, shared
}

// Forget drops an in-flight key so the next caller starts a fresh request.
func (g *SingleFlight[T]) Forget(key string) {
	g.group.Forget(key)
}
