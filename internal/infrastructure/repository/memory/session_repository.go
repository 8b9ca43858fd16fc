package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/player-scout/internal/domain/session"
	"github.com/riskibarqy/player-scout/internal/platform/id"
)

type SessionRepositoryConfig struct {
	IdleTimeout time.Duration
	IDs         id.Generator
	Now         func() time.Time
}

// SessionRepository keeps sessions in process memory. Each user has an independent
// lock so one user's slow turn never blocks another's.
type SessionRepository struct {
	mu    sync.RWMutex
	items map[string]*session.Session

	locksMu sync.Mutex
	locks   map[string]*userLock

	idle time.Duration
	ids  id.Generator
	now  func() time.Time
}

type userLock struct {
	ch   chan struct{}
	refs int
}

func NewSessionRepository(cfg SessionRepositoryConfig) *SessionRepository {
	if cfg.IDs == nil {
		cfg.IDs = id.NewRandomGenerator("conv")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SessionRepository{
		items: make(map[string]*session.Session),
		locks: make(map[string]*userLock),
		idle:  cfg.IdleTimeout,
		ids:   cfg.IDs,
		now:   cfg.Now,
	}
}

func (r *SessionRepository) GetOrCreate(_ context.Context, userID string) (*session.Session, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, false, fmt.Errorf("user id is required")
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	expired := false
	if existing, ok := r.items[userID]; ok {
		if !existing.Expired(now, r.idle) {
			return existing.Clone(), false, nil
		}
		delete(r.items, userID)
		expired = true
	}

	conversationID, err := r.ids.NewID()
	if err != nil {
		return nil, false, fmt.Errorf("new conversation id: %w", err)
	}
	created := session.New(userID, conversationID, now)
	r.items[userID] = created
	return created.Clone(), expired, nil
}

func (r *SessionRepository) Get(_ context.Context, userID string) (*session.Session, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[userID]
	if !ok {
		return nil, false, nil
	}
	return item.Clone(), true, nil
}

func (r *SessionRepository) Save(_ context.Context, s *session.Session) error {
	if s == nil || strings.TrimSpace(s.UserID) == "" {
		return fmt.Errorf("session with user id is required")
	}
	if err := s.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	r.items[s.UserID] = s.Clone()
	r.mu.Unlock()
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	delete(r.items, userID)
	r.mu.Unlock()
	return nil
}

func (r *SessionRepository) ExpireIfStale(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for userID, item := range r.items {
		if item.Expired(now, r.idle) {
			delete(r.items, userID)
			removed++
		}
	}
	return removed, nil
}

func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *SessionRepository) Lock(ctx context.Context, userID string) (func(), error) {
	r.locksMu.Lock()
	l, ok := r.locks[userID]
	if !ok {
		l = &userLock{ch: make(chan struct{}, 1)}
		r.locks[userID] = l
	}
	l.refs++
	r.locksMu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		r.releaseRef(userID, l)
		return nil, fmt.Errorf("wait for session lock: %w", ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			r.releaseRef(userID, l)
		})
	}, nil
}

func (r *SessionRepository) releaseRef(userID string, l *userLock) {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()

	l.refs--
	if l.refs == 0 && r.locks[userID] == l {
		delete(r.locks, userID)
	}
}
