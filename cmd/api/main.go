package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/player-scout/internal/app"
	"github.com/riskibarqy/player-scout/internal/config"
	"github.com/riskibarqy/player-scout/internal/observability"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "version", cfg.ServiceVersion)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}
	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof", "error", err)
		os.Exit(1)
	}

	scout, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer scout.Close()

	srv, err := scout.NewHTTPServer()
	if err != nil {
		logger.Error("build http server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		scout.RunSweeper(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "mcp_enabled", cfg.MCPEnabled, "mcp_path", cfg.MCPPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		logger.Error("http server failed", "error", err)
		exitCode = 1
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		exitCode = 1
	}
	<-sweeperDone

	if err := observability.StopPprofServer(pprofSrv, logger, shutdownTimeout); err != nil {
		logger.Warn("stop pprof server", "error", err)
	}
	if err := stopProfiler(); err != nil {
		logger.Warn("stop pyroscope", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("shutdown uptrace", "error", err)
	}

	logger.Info("http server stopped")
	if exitCode != 0 {
		scout.Close()
		os.Exit(exitCode)
	}
}
