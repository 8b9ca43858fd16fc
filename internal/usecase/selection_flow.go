package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/domain/session"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
	"github.com/riskibarqy/player-scout/internal/platform/metrics"
)

// Reply is the outcome of one conversational turn.
type Reply struct {
	Text           string                `json:"text"`
	State          session.State         `json:"state"`
	Input          InputClass            `json:"input,omitempty"`
	ConversationID string                `json:"conversation_id,omitempty"`
	Candidates     []player.Candidate    `json:"candidates,omitempty"`
	Selected       *player.Candidate     `json:"selected,omitempty"`
	Profile        *player.PlayerProfile `json:"profile,omitempty"`
	// SessionExpired marks a turn that replaced a stale session (ErrSessionExpired).
	SessionExpired bool                  `json:"session_expired,omitempty"`

	// Err classifies a non-happy outcome such as ErrNoMatchFound or
	// ErrInvalidSelection. The turn itself still succeeded.
	Err error `json:"-"`
}

// errLockWait marks a turn abandoned before it held the user's lock, so the
// session belongs to another turn and must not be reset.
var errLockWait = errors.New("lock session")

type SelectionFlow struct {
	store      session.Store
	resolver   *CandidateResolver
	aggregator *DataAggregator
	logger     *logging.Logger
	metrics    *metrics.Recorder
	now        func() time.Time
}

func NewSelectionFlow(
	store session.Store,
	resolver *CandidateResolver,
	aggregator *DataAggregator,
	logger *logging.Logger,
	recorder *metrics.Recorder,
) *SelectionFlow {
	return &SelectionFlow{
		store:      store,
		resolver:   resolver,
		aggregator: aggregator,
		logger:     logger.Named("selection"),
		metrics:    recorder,
		now:        time.Now,
	}
}

// Process runs one message through the user's state machine. The returned error is
// reserved for infrastructure faults; conversational failures travel in Reply.Err.
func (f *SelectionFlow) Process(ctx context.Context, userID, message string) (_ Reply, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SelectionFlow.Process", attribute.String("user_id", userID))
	defer func() { endUsecaseSpan(span, err) }()

	unlock, lockErr := f.store.Lock(ctx, userID)
	if lockErr != nil {
		return Reply{}, fmt.Errorf("%w: %w", errLockWait, lockErr)
	}
	defer unlock()

	s, expired, err := f.store.GetOrCreate(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("load session: %w", err)
	}

	from := s.State
	input := Classify(s.State, message)
	reply := f.apply(ctx, s, input)
	s.Touch(f.now())

	if err := f.store.Save(ctx, s); err != nil {
		return Reply{}, fmt.Errorf("save session: %w", err)
	}

	if expired {
		reply.Text = "Your previous selection expired, starting fresh.\n" + reply.Text
		reply.SessionExpired = true
	}
	reply.State = s.State
	reply.Input = input.Class
	reply.ConversationID = s.ConversationID

	f.metrics.IncTransition(string(from), string(input.Class), string(s.State))
	span.SetAttributes(
		attribute.String("selection.from", string(from)),
		attribute.String("selection.input", string(input.Class)),
		attribute.String("selection.to", string(s.State)),
	)
	f.logger.DebugContext(ctx, "selection transition",
		"user_id", userID,
		"conversation_id", s.ConversationID,
		"from", from,
		"input", input.Class,
		"to", s.State,
	)

	return reply, nil
}

// apply is the transition table. It mutates s and never leaves it invalid.
func (f *SelectionFlow) apply(ctx context.Context, s *session.Session, input ClassifiedInput) Reply {
	switch input.Class {
	case InputCancel:
		s.Reset()
		return Reply{Text: "Selection cleared. Send a player's name to start again."}
	case InputUnrecognized:
		return Reply{Text: renderGuidance(s.State)}
	}

	switch s.State {
	case session.StateIdle:
		if input.Class == InputNameQuery {
			return f.search(ctx, s, input.Query)
		}
	case session.StateAwaitingSelection:
		switch input.Class {
		case InputNameQuery:
			return f.search(ctx, s, input.Query)
		case InputIndexSelection:
			return f.selectIndex(s, input.Index)
		}
	case session.StateAwaitingConfirmation:
		switch input.Class {
		case InputAffirmation:
			return f.confirm(ctx, s)
		case InputNegation:
			return f.reject(s)
		case InputNameQuery:
			return f.search(ctx, s, input.Query)
		}
	}

	return Reply{Text: renderGuidance(s.State)}
}

func (f *SelectionFlow) search(ctx context.Context, s *session.Session, query string) Reply {
	res, err := f.resolver.Resolve(ctx, query)
	if err != nil {
		s.Reset()
		return Reply{Text: "Please send a player's name to search.", Err: err}
	}

	switch {
	case res.NoData():
		s.Reset()
		return Reply{
			Text: "No data available right now: none of the player sources answered. Please try again shortly.",
			Err:  ErrNoDataAvailable,
		}
	case len(res.Candidates) == 0:
		s.Reset()
		return Reply{
			Text: fmt.Sprintf("No player found matching %q.", res.Query) + renderSourceNote(res.SourcesFailed),
			Err:  ErrNoMatchFound,
		}
	case len(res.Candidates) == 1:
		only := res.Candidates[0].Clone()
		s.State = session.StateAwaitingConfirmation
		s.Query = res.Query
		s.Candidates = res.Candidates
		s.Selected = &only
		return Reply{
			Text:       renderConfirmationPrompt(only) + renderSourceNote(res.SourcesFailed),
			Candidates: cloneCandidates(s.Candidates),
			Selected:   &only,
		}
	default:
		s.State = session.StateAwaitingSelection
		s.Query = res.Query
		s.Candidates = res.Candidates
		s.Selected = nil
		return Reply{
			Text:       renderSelectionPrompt(res.Query, s.Candidates) + renderSourceNote(res.SourcesFailed),
			Candidates: cloneCandidates(s.Candidates),
		}
	}
}

func (f *SelectionFlow) selectIndex(s *session.Session, index int) Reply {
	if index < 1 || index > len(s.Candidates) {
		return Reply{
			Text: fmt.Sprintf("Please choose a number between 1 and %d.\n%s",
				len(s.Candidates), RenderCandidateList(s.Candidates)),
			Candidates: cloneCandidates(s.Candidates),
			Err:        fmt.Errorf("%w: %d is outside 1..%d", ErrInvalidSelection, index, len(s.Candidates)),
		}
	}

	picked := s.Candidates[index-1].Clone()
	s.Selected = &picked
	s.State = session.StateAwaitingConfirmation
	return Reply{
		Text:       renderConfirmationPrompt(picked),
		Candidates: cloneCandidates(s.Candidates),
		Selected:   &picked,
	}
}

func (f *SelectionFlow) confirm(ctx context.Context, s *session.Session) Reply {
	selected := s.Selected.Clone()
	s.Reset()

	profile, err := f.aggregator.Aggregate(ctx, selected.Identities())
	if err != nil {
		f.logger.WarnContext(ctx, "aggregate confirmed player failed",
			"user_id", s.UserID,
			"identity", selected.Identity().String(),
			"error", err,
		)
		return Reply{
			Text: fmt.Sprintf("Sorry, I could not fetch a profile for %s right now. Send the name again to retry.", selected.DisplayName),
			Err:  err,
		}
	}

	return Reply{Text: RenderProfile(profile), Profile: &profile}
}

func (f *SelectionFlow) reject(s *session.Session) Reply {
	rejected := s.Selected.Identity()
	remaining := make([]player.Candidate, 0, len(s.Candidates))
	for _, c := range s.Candidates {
		if c.Identity() != rejected {
			remaining = append(remaining, c)
		}
	}
	s.Selected = nil

	if len(remaining) > 1 {
		s.Candidates = remaining
		s.State = session.StateAwaitingSelection
		return Reply{
			Text:       "Okay, here are the other matches:\n" + RenderCandidateList(remaining) + "\nReply with a number.",
			Candidates: cloneCandidates(remaining),
		}
	}

	text := "No other candidates left. Send another name to search again."
	if len(remaining) == 1 {
		text = fmt.Sprintf("The only other match was %s. Send a more specific name to search again.", RenderCandidate(remaining[0]))
	}
	s.Reset()
	return Reply{Text: text}
}

func cloneCandidates(items []player.Candidate) []player.Candidate {
	out := make([]player.Candidate, len(items))
	for i, c := range items {
		out[i] = c.Clone()
	}
	return out
}

// normalizeUserID is shared by every entry point keyed by user.
func normalizeUserID(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return userID, nil
}
