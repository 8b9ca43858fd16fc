package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/player-scout/internal/config"
	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/domain/session"
	"github.com/riskibarqy/player-scout/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
	"github.com/riskibarqy/player-scout/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:                     config.EnvDev,
		ServiceName:                "player-scout",
		ServiceVersion:             "test",
		HTTPAddr:                   ":0",
		ReadTimeout:                time.Second,
		WriteTimeout:               time.Second,
		CORSAllowedOrigins:         []string{"*"},
		SourceTimeout:              time.Second,
		SourceRetryInitialInterval: time.Millisecond,
		SourceCircuitFailureCount:  5,
		SourceCircuitOpenTimeout:   time.Second,
		SourceCircuitHalfOpenMax:   1,
		SourceCacheEnabled:         true,
		SourceCacheTTL:             time.Minute,
		StructuredMinScore:         0.6,
		ScrapedMinScore:            0.75,
		MaxCandidates:              10,
		SessionIdleTimeout:         30 * time.Minute,
		SessionSweepInterval:       time.Minute,
		AggregatorWorkers:          2,
		MCPEnabled:                 true,
		MCPPath:                    "/mcp",
		MetricsEnabled:             true,
	}
}

func TestNew_WithoutSourcesReportsNoData(t *testing.T) {
	t.Parallel()

	a, err := New(testConfig(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	reply := a.Chat.HandleMessage(context.Background(), "u1", "Lionel Messi")
	assert.ErrorIs(t, reply.Err, usecase.ErrNoDataAvailable)
	assert.Equal(t, session.StateIdle, reply.State)
}

func TestNewHTTPServer_MountsRoutes(t *testing.T) {
	t.Parallel()

	a, err := New(testConfig(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	srv, err := a.NewHTTPServer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// A message first so the transition counter has a sample to export.
	a.Chat.HandleMessage(context.Background(), "u1", "cancel")
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "transitions")

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions/u1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.HTTPAddr = ""
	a, err := New(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	_, err = a.NewHTTPServer()
	assert.Error(t, err)
}

func TestBuildSources(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.StructuredSourceEnabled = true
	cfg.SportMonksToken = "token"
	cfg.SportMonksBaseURL = "http://127.0.0.1:1"
	cfg.ScrapedSourceEnabled = true
	cfg.TransfermarktBaseURL = "http://127.0.0.1:1"

	sources, evictors := buildSources(cfg, logging.NewNop(), nil)
	require.Len(t, sources, 2)
	assert.Len(t, evictors, 2)
	assert.Equal(t, player.SourceStructured, sources[0].Tag())
	assert.Equal(t, player.SourceScraped, sources[1].Tag())
	_, cached := sources[0].(*cache.SourceRepository)
	assert.True(t, cached)

	cfg.SourceCacheEnabled = false
	sources, evictors = buildSources(cfg, logging.NewNop(), nil)
	require.Len(t, sources, 2)
	assert.Empty(t, evictors)
	_, cached = sources[1].(*cache.SourceRepository)
	assert.False(t, cached)
}

func TestNew_MCPDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MCPEnabled = false
	cfg.MetricsEnabled = false
	a, err := New(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Nil(t, a.MCP)
	srv, err := a.NewHTTPServer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
