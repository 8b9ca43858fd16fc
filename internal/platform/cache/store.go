package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/player-scout/internal/platform/resilience"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is a TTL cache keyed by string. Loads for the same key are collapsed so a
// burst of identical searches hits the upstream source once.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	flight  resilience.SingleFlight[V]
	now     func() time.Time
}

func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if s.ttl > 0 && !e.expiresAt.After(s.now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return zero, false
	}

	return e.value, true
}

func (s *Store[V]) Set(_ context.Context, key string, value V) {
	if key == "" {
		return
	}

	expiresAt := time.Time{}
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry[V]{value: value, expiresAt: expiresAt}
	s.mu.Unlock()
}

// EvictExpired drops stale entries and reports how many were removed.
func (s *Store[V]) EvictExpired() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, e := range s.entries {
		if !e.expiresAt.After(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// GetOrLoad returns the cached value or runs loader once per key. Loader errors are
// not cached.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (V, error)) (V, error) {
	var zero V
	if loader == nil {
		return zero, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (V, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return zero, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return zero, err
	}

	return value, nil
}
