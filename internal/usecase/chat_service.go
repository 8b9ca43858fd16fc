package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/domain/session"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
	"github.com/riskibarqy/player-scout/internal/platform/metrics"
)

const (
	genericFailureText = "Something went wrong on my side. Your search was reset, please send the player's name again."
	abandonedText      = "Your previous message is still being handled. Please send this one again."
)

// resetTimeout bounds the cleanup that runs after a failed turn.
const resetTimeout = 2 * time.Second

// ChatService is the entry point shared by the HTTP API, the MCP server and the CLI.
type ChatService struct {
	flow       *SelectionFlow
	aggregator *DataAggregator
	store      session.Store
	idle       time.Duration
	logger     *logging.Logger
	metrics    *metrics.Recorder
	now        func() time.Time
}

func NewChatService(
	flow *SelectionFlow,
	aggregator *DataAggregator,
	store session.Store,
	idleTimeout time.Duration,
	logger *logging.Logger,
	recorder *metrics.Recorder,
) *ChatService {
	return &ChatService{
		flow:       flow,
		aggregator: aggregator,
		store:      store,
		idle:       idleTimeout,
		logger:     logger.Named("chat"),
		metrics:    recorder,
		now:        time.Now,
	}
}

// HandleMessage never fails outward: any fault, panics included, is logged, the
// user's session is reset and a generic reply is returned.
func (s *ChatService) HandleMessage(ctx context.Context, userID, message string) (reply Reply) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChatService.HandleMessage")
	defer span.End()

	userID, err := normalizeUserID(userID)
	if err != nil {
		return Reply{Text: "A user id is required.", State: session.StateIdle, Err: err}
	}

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(ctx, "panic while handling message",
				"user_id", userID,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			reply = s.fail(ctx, userID, fmt.Errorf("panic: %v", rec))
		}
	}()

	switch strings.ToLower(strings.TrimSpace(message)) {
	case "/start":
		return s.staticReply(ctx, userID, welcomeText)
	case "/help", "help":
		return s.staticReply(ctx, userID, helpText)
	case "/status":
		status, err := s.SessionStatus(ctx, userID)
		if err != nil {
			return s.fail(ctx, userID, err)
		}
		return Reply{Text: status.Text(), State: status.State, ConversationID: status.ConversationID}
	}

	reply, err = s.flow.Process(ctx, userID, message)
	if errors.Is(err, errLockWait) {
		return s.abandoned(ctx, userID, err)
	}
	if err != nil {
		return s.fail(ctx, userID, err)
	}
	return reply
}

// abandoned answers a turn that gave up waiting for the user's lock. The session is
// left to the turn that holds it.
func (s *ChatService) abandoned(ctx context.Context, userID string, cause error) Reply {
	s.logger.WarnContext(ctx, "message dropped while waiting for session",
		"user_id", userID,
		"error", cause,
	)
	reply := s.staticReply(context.WithoutCancel(ctx), userID, abandonedText)
	reply.Err = cause
	return reply
}

func (s *ChatService) staticReply(ctx context.Context, userID, text string) Reply {
	state := session.StateIdle
	if current, ok, err := s.store.Get(ctx, userID); err == nil && ok {
		state = current.State
	}
	return Reply{Text: text, State: state}
}

func (s *ChatService) fail(ctx context.Context, userID string, cause error) Reply {
	s.metrics.IncHandlerFault()
	s.logger.ErrorContext(ctx, "handle message failed, resetting session",
		"user_id", userID,
		"error", cause,
	)

	resetCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resetTimeout)
	defer cancel()
	if err := s.ResetSession(resetCtx, userID); err != nil {
		s.logger.ErrorContext(ctx, "reset session after failure", "user_id", userID, "error", err)
	}

	return Reply{Text: genericFailureText, State: session.StateIdle, Err: cause}
}

// AggregateProfile builds a profile without a conversation.
func (s *ChatService) AggregateProfile(ctx context.Context, identities []player.Identity) (player.PlayerProfile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChatService.AggregateProfile")
	defer span.End()

	profile, err := s.aggregator.Aggregate(ctx, identities)
	if err != nil {
		return player.PlayerProfile{}, fmt.Errorf("aggregate profile: %w", err)
	}
	return profile, nil
}

// ResetSession drops the user's session; the next message starts at IDLE.
func (s *ChatService) ResetSession(ctx context.Context, userID string) error {
	userID, err := normalizeUserID(userID)
	if err != nil {
		return err
	}

	unlock, err := s.store.Lock(ctx, userID)
	if err != nil {
		return fmt.Errorf("lock session: %w", err)
	}
	defer unlock()

	if err := s.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

type SessionStatus struct {
	UserID         string             `json:"user_id"`
	Active         bool               `json:"active"`
	ConversationID string             `json:"conversation_id,omitempty"`
	State          session.State      `json:"state"`
	Query          string             `json:"query,omitempty"`
	Candidates     []player.Candidate `json:"candidates,omitempty"`
	Selected       *player.Candidate  `json:"selected,omitempty"`
	IdleFor        time.Duration      `json:"idle_for_ns"`
	ExpiresIn      time.Duration      `json:"expires_in_ns"`
}

func (st SessionStatus) Text() string {
	if !st.Active {
		return "No active search. Send a player's name to start."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "State: %s", st.State)
	if st.Query != "" {
		fmt.Fprintf(&b, "\nLast search: %q (%d candidates)", st.Query, len(st.Candidates))
	}
	if st.Selected != nil {
		fmt.Fprintf(&b, "\nSelected: %s", RenderCandidate(*st.Selected))
	}
	fmt.Fprintf(&b, "\nIdle for %s", st.IdleFor.Round(time.Second))
	return b.String()
}

func (s *ChatService) SessionStatus(ctx context.Context, userID string) (SessionStatus, error) {
	userID, err := normalizeUserID(userID)
	if err != nil {
		return SessionStatus{}, err
	}

	current, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return SessionStatus{}, fmt.Errorf("get session: %w", err)
	}
	now := s.now()
	if !ok || current.Expired(now, s.idle) {
		return SessionStatus{UserID: userID, State: session.StateIdle}, nil
	}

	idleFor := now.Sub(current.LastActivityAt)
	out := SessionStatus{
		UserID:         userID,
		Active:         true,
		ConversationID: current.ConversationID,
		State:          current.State,
		Query:          current.Query,
		Candidates:     current.Candidates,
		Selected:       current.Selected,
		IdleFor:        idleFor,
	}
	if s.idle > 0 {
		out.ExpiresIn = max(s.idle-idleFor, 0)
	}
	return out, nil
}
