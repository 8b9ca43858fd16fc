package mcpserver

import (
	"context"
	"fmt"
	"sort"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/domain/session"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
	"github.com/riskibarqy/player-scout/internal/usecase"
)

type fakeScout struct {
	reply      usecase.Reply
	profile    player.PlayerProfile
	profileErr error
	gotIDs     []player.Identity
	resets     []string
}

func (f *fakeScout) HandleMessage(_ context.Context, userID, message string) usecase.Reply {
	if userID == "" {
		return usecase.Reply{Text: "A user id is required.", State: session.StateIdle, Err: usecase.ErrInvalidInput}
	}
	out := f.reply
	out.Text = out.Text + " (" + message + ")"
	return out
}

func (f *fakeScout) AggregateProfile(_ context.Context, identities []player.Identity) (player.PlayerProfile, error) {
	f.gotIDs = identities
	return f.profile, f.profileErr
}

func (f *fakeScout) ResetSession(_ context.Context, userID string) error {
	f.resets = append(f.resets, userID)
	return nil
}

func (f *fakeScout) SessionStatus(_ context.Context, userID string) (usecase.SessionStatus, error) {
	return usecase.SessionStatus{UserID: userID, Active: true, State: session.StateAwaitingSelection, Query: "silva"}, nil
}

func connect(t *testing.T, scout Scout) *mcp.ClientSession {
	t.Helper()

	ctx := context.Background()
	srv := New(scout, "test", logging.NewNop())
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	serverSession, err := srv.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "scout-test", Version: "v0"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientSession.Close() })
	return clientSession
}

func callText(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text, res.IsError
}

func TestServer_ListsTools(t *testing.T) {
	t.Parallel()

	cs := connect(t, &fakeScout{})
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"aggregate_profile", "handle_message", "reset_session", "session_status"}, names)
}

func TestServer_HandleMessage(t *testing.T) {
	t.Parallel()

	scout := &fakeScout{reply: usecase.Reply{
		Text:  "No player found",
		State: session.StateIdle,
		Input: usecase.InputNameQuery,
		Err:   usecase.ErrNoMatchFound,
	}}
	cs := connect(t, scout)

	text, isErr := callText(t, cs, "handle_message", map[string]any{"user_id": "u1", "message": "Zzzqqq"})
	require.False(t, isErr, text)

	var out MessageResult
	require.NoError(t, sonic.UnmarshalString(text, &out))
	assert.Equal(t, "No player found (Zzzqqq)", out.Text)
	assert.Equal(t, session.StateIdle, out.State)
	assert.Equal(t, "no_match", out.Outcome)

	text, isErr = callText(t, cs, "handle_message", map[string]any{"user_id": "", "message": "Messi"})
	assert.True(t, isErr)
	assert.Contains(t, text, "invalid input")
}

func TestServer_AggregateProfile(t *testing.T) {
	t.Parallel()

	scout := &fakeScout{profile: player.PlayerProfile{
		CanonicalName: "Erling Haaland",
		Identities:    []player.Identity{{Source: player.SourceStructured, ID: "418560"}},
		Fields:        map[string]player.FieldValue{},
		Partial:       true,
	}}
	cs := connect(t, scout)

	text, isErr := callText(t, cs, "aggregate_profile", map[string]any{"identities": []string{"structured:418560"}})
	require.False(t, isErr, text)
	assert.Equal(t, []player.Identity{{Source: player.SourceStructured, ID: "418560"}}, scout.gotIDs)

	var out ProfileResult
	require.NoError(t, sonic.UnmarshalString(text, &out))
	assert.Equal(t, "Erling Haaland", out.Profile.CanonicalName)
	assert.Contains(t, out.Text, "(partial)")

	text, isErr = callText(t, cs, "aggregate_profile", map[string]any{"identities": []string{"WIKI:1"}})
	assert.True(t, isErr)
	assert.Contains(t, text, "invalid player identity")
}

func TestServer_AggregateProfileError(t *testing.T) {
	t.Parallel()

	scout := &fakeScout{profileErr: fmt.Errorf("aggregate profile: %w", usecase.ErrSourceUnavailable)}
	cs := connect(t, scout)

	text, isErr := callText(t, cs, "aggregate_profile", map[string]any{"identities": []string{"SCRAPED:28003"}})
	assert.True(t, isErr)
	assert.Contains(t, text, "source unavailable")
}

func TestServer_SessionTools(t *testing.T) {
	t.Parallel()

	scout := &fakeScout{}
	cs := connect(t, scout)

	text, isErr := callText(t, cs, "session_status", map[string]any{"user_id": "u7"})
	require.False(t, isErr, text)
	assert.Contains(t, text, `"state": "AWAITING_SELECTION"`)

	text, isErr = callText(t, cs, "reset_session", map[string]any{"user_id": "u7"})
	require.False(t, isErr, text)
	assert.Equal(t, []string{"u7"}, scout.resets)
}

func TestOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: usecase.ErrNoDataAvailable, want: "no_data"},
		{err: fmt.Errorf("%w: 5", usecase.ErrInvalidSelection), want: "invalid_selection"},
		{err: fmt.Errorf("%w: %w", usecase.ErrSourceUnavailable, usecase.ErrProfileNotFound), want: "profile_not_found"},
		{err: fmt.Errorf("panic: boom"), want: "failed"},
	}
	for _, tt := range tests {
		if got := outcome(tt.err); got != tt.want {
			t.Fatalf("outcome(%v) got=%q want=%q", tt.err, got, tt.want)
		}
	}
}
