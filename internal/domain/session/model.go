package session

import (
	"fmt"
	"time"

	"github.com/riskibarqy/player-scout/internal/domain/player"
)

type State string

const (
	StateIdle                 State = "IDLE"
	StateAwaitingSelection    State = "AWAITING_SELECTION"
	StateAwaitingConfirmation State = "AWAITING_CONFIRMATION"
)

func (s State) Valid() bool {
	switch s {
	case StateIdle, StateAwaitingSelection, StateAwaitingConfirmation:
		return true
	default:
		return false
	}
}

// Session is one user's conversation. It is owned by whoever holds the user's lock.
type Session struct {
	UserID         string
	ConversationID string
	State          State
	Query          string
	Candidates     []player.Candidate
	Selected       *player.Candidate
	CreatedAt      time.Time
	LastActivityAt time.Time
}

func New(userID, conversationID string, now time.Time) *Session {
	return &Session{
		UserID:         userID,
		ConversationID: conversationID,
		State:          StateIdle,
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// Reset returns the session to IDLE and drops any selection context.
func (s *Session) Reset() {
	s.State = StateIdle
	s.Query = ""
	s.Candidates = nil
	s.Selected = nil
}

func (s *Session) Touch(now time.Time) {
	s.LastActivityAt = now
}

func (s *Session) Expired(now time.Time, idle time.Duration) bool {
	return idle > 0 && now.Sub(s.LastActivityAt) > idle
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Candidates != nil {
		out.Candidates = make([]player.Candidate, len(s.Candidates))
		for i, c := range s.Candidates {
			out.Candidates[i] = c.Clone()
		}
	}
	if s.Selected != nil {
		selected := s.Selected.Clone()
		out.Selected = &selected
	}
	return &out
}

// Validate reports the first broken state invariant.
func (s *Session) Validate() error {
	if !s.State.Valid() {
		return fmt.Errorf("session %s: undefined state %q", s.UserID, s.State)
	}
	if s.Selected != nil && s.State != StateAwaitingConfirmation {
		return fmt.Errorf("session %s: selection held in state %s", s.UserID, s.State)
	}
	switch s.State {
	case StateAwaitingSelection:
		if len(s.Candidates) == 0 {
			return fmt.Errorf("session %s: no candidates in state %s", s.UserID, s.State)
		}
	case StateAwaitingConfirmation:
		if s.Selected == nil {
			return fmt.Errorf("session %s: nothing selected in state %s", s.UserID, s.State)
		}
	}
	return nil
}
