package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/player-scout/external/sportmonks"
	"github.com/riskibarqy/player-scout/external/transfermarkt"
	"github.com/riskibarqy/player-scout/internal/config"
	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/player-scout/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/player-scout/internal/interfaces/httpapi"
	"github.com/riskibarqy/player-scout/internal/interfaces/mcpserver"
	idgen "github.com/riskibarqy/player-scout/internal/platform/id"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
	"github.com/riskibarqy/player-scout/internal/platform/metrics"
	"github.com/riskibarqy/player-scout/internal/platform/resilience"
	"github.com/riskibarqy/player-scout/internal/usecase"
)

// App holds the wired core shared by the API server and the CLI.
type App struct {
	Config   config.Config
	Logger   *logging.Logger
	Metrics  *metrics.Recorder
	Sessions *memory.SessionRepository
	Resolver *usecase.CandidateResolver
	Chat     *usecase.ChatService
	Sweeper  *usecase.SessionSweeper
	MCP      *mcpserver.Server

	aggregator *usecase.DataAggregator
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		recorder = metrics.New()
	}

	sources, evictors := buildSources(cfg, logger, recorder)
	if len(sources) == 0 {
		logger.Warn("no player source enabled, every search will report no data")
	}

	sessions := memory.NewSessionRepository(memory.SessionRepositoryConfig{
		IdleTimeout: cfg.SessionIdleTimeout,
		IDs:         idgen.NewRandomGenerator("conv"),
	})

	resolver := usecase.NewCandidateResolver(sources, usecase.ResolverConfig{
		MinScores: map[player.SourceTag]float64{
			player.SourceStructured: cfg.StructuredMinScore,
			player.SourceScraped:    cfg.ScrapedMinScore,
		},
		MaxCandidates: cfg.MaxCandidates,
		SourceTimeout: cfg.SourceTimeout,
	}, logger, recorder)

	aggregator, err := usecase.NewDataAggregator(sources, usecase.AggregatorConfig{
		Workers:       cfg.AggregatorWorkers,
		SourceTimeout: cfg.SourceTimeout,
	}, logger, recorder)
	if err != nil {
		return nil, fmt.Errorf("build aggregator: %w", err)
	}

	flow := usecase.NewSelectionFlow(sessions, resolver, aggregator, logger, recorder)
	chat := usecase.NewChatService(flow, aggregator, sessions, cfg.SessionIdleTimeout, logger, recorder)
	sweeper := usecase.NewSessionSweeper(sessions, cfg.SessionSweepInterval, logger, recorder, evictors...)

	var mcp *mcpserver.Server
	if cfg.MCPEnabled {
		mcp = mcpserver.New(chat, cfg.ServiceVersion, logger)
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    recorder,
		Sessions:   sessions,
		Resolver:   resolver,
		Chat:       chat,
		Sweeper:    sweeper,
		MCP:        mcp,
		aggregator: aggregator,
	}, nil
}

func buildSources(cfg config.Config, logger *logging.Logger, recorder *metrics.Recorder) ([]player.Source, []usecase.CacheEvictor) {
	retry := resilience.RetryConfig{
		MaxRetries:      cfg.SourceMaxRetries,
		InitialInterval: cfg.SourceRetryInitialInterval,
	}
	breaker := resilience.CircuitBreakerConfig{
		Enabled:          cfg.SourceCircuitEnabled,
		FailureThreshold: cfg.SourceCircuitFailureCount,
		OpenTimeout:      cfg.SourceCircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.SourceCircuitHalfOpenMax,
	}

	var raw []player.Source
	if cfg.StructuredSourceEnabled {
		raw = append(raw, sportmonks.NewClient(sportmonks.ClientConfig{
			BaseURL:        cfg.SportMonksBaseURL,
			Token:          cfg.SportMonksToken,
			Timeout:        cfg.SourceTimeout,
			Retry:          retry,
			CircuitBreaker: breaker,
			Logger:         logger,
			Metrics:        recorder,
		}))
	}
	if cfg.ScrapedSourceEnabled {
		raw = append(raw, transfermarkt.NewClient(transfermarkt.ClientConfig{
			BaseURL:        cfg.TransfermarktBaseURL,
			UserAgent:      cfg.TransfermarktUserAgent,
			Timeout:        cfg.SourceTimeout,
			Retry:          retry,
			CircuitBreaker: breaker,
			Logger:         logger,
			Metrics:        recorder,
		}))
	}

	if !cfg.SourceCacheEnabled {
		return raw, nil
	}

	sources := make([]player.Source, 0, len(raw))
	evictors := make([]usecase.CacheEvictor, 0, len(raw))
	for _, src := range raw {
		cached := cache.NewSourceRepository(src, cfg.SourceCacheTTL)
		sources = append(sources, cached)
		evictors = append(evictors, cached)
	}
	return sources, evictors
}

func (a *App) NewHTTPServer() (*http.Server, error) {
	if a.Config.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	routerCfg := httpapi.RouterConfig{
		CORSAllowedOrigins: a.Config.CORSAllowedOrigins,
		MCPPath:            a.Config.MCPPath,
		RequestIDs:         idgen.NewRandomGenerator("req"),
	}
	if a.Metrics != nil {
		routerCfg.Metrics = a.Metrics.Handler()
	}
	if a.MCP != nil {
		routerCfg.MCP = a.MCP.Handler()
	}

	handler := httpapi.NewHandler(a.Chat, a.Logger)
	return &http.Server{
		Addr:         a.Config.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, a.Logger, routerCfg),
		ReadTimeout:  a.Config.ReadTimeout,
		WriteTimeout: a.Config.WriteTimeout,
	}, nil
}

// RunSweeper blocks until ctx is done.
func (a *App) RunSweeper(ctx context.Context) {
	a.Sweeper.Run(ctx)
}

func (a *App) Close() {
	a.aggregator.Close()
}
