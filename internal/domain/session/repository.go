package session

import (
	"context"
	"time"
)

// Store owns every live session. Returned sessions are detached copies; callers
// write changes back with Save while holding the user's lock.
type Store interface {
	// GetOrCreate returns the user's session, replacing one that went idle past the
	// timeout. expired reports that replacement.
	GetOrCreate(ctx context.Context, userID string) (s *Session, expired bool, err error)
	Get(ctx context.Context, userID string) (*Session, bool, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, userID string) error
	ExpireIfStale(ctx context.Context, now time.Time) (int, error)
	// Lock serializes work for one user. It blocks until the lock is held or ctx is done.
	Lock(ctx context.Context, userID string) (unlock func(), err error)
	Len() int
}
