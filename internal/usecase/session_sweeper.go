package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/player-scout/internal/domain/session"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
	"github.com/riskibarqy/player-scout/internal/platform/metrics"
)

const DefaultSweepInterval = time.Minute

// CacheEvictor is a cache whose expired entries the sweeper drops on each pass.
type CacheEvictor interface {
	EvictExpired() int
}

// SessionSweeper removes idle sessions on a fixed interval.
type SessionSweeper struct {
	store    session.Store
	caches   []CacheEvictor
	interval time.Duration
	logger   *logging.Logger
	metrics  *metrics.Recorder
	now      func() time.Time
}

func NewSessionSweeper(
	store session.Store,
	interval time.Duration,
	logger *logging.Logger,
	recorder *metrics.Recorder,
	caches ...CacheEvictor,
) *SessionSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &SessionSweeper{
		store:    store,
		caches:   caches,
		interval: interval,
		logger:   logger.Named("sweeper"),
		metrics:  recorder,
		now:      time.Now,
	}
}

// Run blocks until ctx is done.
func (s *SessionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("session sweeper started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("session sweep failed", "error", err)
			}
		}
	}
}

func (s *SessionSweeper) SweepOnce(ctx context.Context) (int, error) {
	removed, err := s.store.ExpireIfStale(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.metrics.AddExpiredSessions(removed)
		s.logger.Info("expired idle sessions", "count", removed)
	}
	s.metrics.SetActiveSessions(s.store.Len())

	evicted := 0
	for _, c := range s.caches {
		evicted += c.EvictExpired()
	}
	if evicted > 0 {
		s.logger.Debug("evicted expired source cache entries", "count", evicted)
	}
	return removed, nil
}
