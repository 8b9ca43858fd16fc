package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/player-scout/internal/app"
	"github.com/riskibarqy/player-scout/internal/config"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
)

// offlineApp has no sources enabled, so every lookup reports no data.
func offlineApp(string) (*app.App, error) {
	return app.New(config.Config{
		AppEnv:               config.EnvDev,
		ServiceName:          "player-scout",
		SourceTimeout:        time.Second,
		MaxCandidates:        10,
		StructuredMinScore:   0.6,
		ScrapedMinScore:      0.75,
		SessionIdleTimeout:   30 * time.Minute,
		SessionSweepInterval: time.Minute,
		AggregatorWorkers:    1,
	}, logging.NewNop())
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(offlineApp)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestChatCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "help\nLionel Messi\n/exit\nnever read\n", "chat", "--user", "tester")
	require.NoError(t, err)

	assert.Contains(t, out, "Welcome to Player Scout.")
	assert.Contains(t, out, "How it works:")
	assert.Contains(t, out, "No data available right now")
	assert.NotContains(t, out, "never read")
}

func TestChatCommandStopsOnEOF(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "yes\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "Send a player's name to start a search")
}

func TestProfileCommand(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "", "profile", "WIKI:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid player identity")

	_, err = execute(t, "", "profile", "STRUCTURED:154")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source unavailable")

	_, err = execute(t, "", "profile")
	assert.Error(t, err)
}

func TestSearchCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "search", "Kevin", "De", "Bruyne")
	require.NoError(t, err)
	assert.Contains(t, out, "No data available")

	out, err = execute(t, "", "search", "--json", "Messi")
	require.NoError(t, err)
	assert.Contains(t, out, `"query": "Messi"`)
	assert.Contains(t, out, `"sources_queried": 0`)
}
