package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/domain/session"
	"github.com/riskibarqy/player-scout/internal/usecase"
)

type HandleMessageArgs struct {
	UserID  string `json:"user_id" jsonschema:"Stable id of the chatting user (required)"`
	Message string `json:"message" jsonschema:"The user's message: a player name, a list number, yes/no, or cancel"`
}

type AggregateProfileArgs struct {
	Identities []string `json:"identities" jsonschema:"Player identities as SOURCE:id, e.g. STRUCTURED:154 or SCRAPED:28003"`
}

type UserArgs struct {
	UserID string `json:"user_id" jsonschema:"Stable id of the chatting user (required)"`
}

// MessageResult is the handle_message payload.
type MessageResult struct {
	Text           string                `json:"text"`
	State          session.State         `json:"state"`
	Input          usecase.InputClass    `json:"input,omitempty"`
	ConversationID string                `json:"conversation_id,omitempty"`
	Candidates     []player.Candidate    `json:"candidates,omitempty"`
	Selected       *player.Candidate     `json:"selected,omitempty"`
	Profile        *player.PlayerProfile `json:"profile,omitempty"`
	SessionExpired bool                  `json:"session_expired,omitempty"`
	Outcome        string                `json:"outcome,omitempty"`
}

type ProfileResult struct {
	Profile player.PlayerProfile `json:"profile"`
	Text    string               `json:"text"`
}

func (s *Server) registerTools() {
	addTool(s, &mcp.Tool{
		Name:        "handle_message",
		Description: "Send one chat message for a user and get the scout's reply. Searches by player name, lists candidates, and returns the aggregated profile after confirmation.",
	}, s.handleMessage)

	addTool(s, &mcp.Tool{
		Name:        "aggregate_profile",
		Description: "Build a merged player profile directly from known source identities, without a conversation.",
	}, s.aggregateProfile)

	addTool(s, &mcp.Tool{
		Name:        "session_status",
		Description: "Show the user's conversation state, last search and selected candidate.",
	}, s.sessionStatus)

	addTool(s, &mcp.Tool{
		Name:        "reset_session",
		Description: "Clear the user's conversation so the next message starts a new search.",
	}, s.resetSession)
}

func (s *Server) handleMessage(ctx context.Context, _ *mcp.CallToolRequest, args HandleMessageArgs) (*mcp.CallToolResult, any, error) {
	reply := s.scout.HandleMessage(ctx, args.UserID, args.Message)
	if errors.Is(reply.Err, usecase.ErrInvalidInput) {
		return toolError(reply.Err), nil, nil
	}

	out := MessageResult{
		Text:           reply.Text,
		State:          reply.State,
		Input:          reply.Input,
		ConversationID: reply.ConversationID,
		Candidates:     reply.Candidates,
		Selected:       reply.Selected,
		Profile:        reply.Profile,
		SessionExpired: reply.SessionExpired,
		Outcome:        outcome(reply.Err),
	}
	return toolJSON(out)
}

func (s *Server) aggregateProfile(ctx context.Context, _ *mcp.CallToolRequest, args AggregateProfileArgs) (*mcp.CallToolResult, any, error) {
	identities := make([]player.Identity, 0, len(args.Identities))
	for _, raw := range args.Identities {
		ident, err := player.ParseIdentity(raw)
		if err != nil {
			return toolError(fmt.Errorf("%w: %v", usecase.ErrInvalidIdentity, err)), nil, nil
		}
		identities = append(identities, ident)
	}

	profile, err := s.scout.AggregateProfile(ctx, identities)
	if err != nil {
		s.logger.WarnContext(ctx, "aggregate_profile tool failed", "identities", args.Identities, "error", err)
		return toolError(err), nil, nil
	}
	return toolJSON(ProfileResult{Profile: profile, Text: usecase.RenderProfile(profile)})
}

func (s *Server) sessionStatus(ctx context.Context, _ *mcp.CallToolRequest, args UserArgs) (*mcp.CallToolResult, any, error) {
	status, err := s.scout.SessionStatus(ctx, args.UserID)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(status)
}

func (s *Server) resetSession(ctx context.Context, _ *mcp.CallToolRequest, args UserArgs) (*mcp.CallToolResult, any, error) {
	if err := s.scout.ResetSession(ctx, args.UserID); err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(map[string]any{"user_id": args.UserID, "reset": true})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, usecase.ErrNoMatchFound):
		return "no_match"
	case errors.Is(err, usecase.ErrNoDataAvailable):
		return "no_data"
	case errors.Is(err, usecase.ErrInvalidSelection):
		return "invalid_selection"
	case errors.Is(err, usecase.ErrProfileNotFound):
		return "profile_not_found"
	case errors.Is(err, usecase.ErrSourceUnavailable):
		return "source_unavailable"
	default:
		return "failed"
	}
}
