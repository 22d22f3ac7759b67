// Package main provides the local JSON API server for GloboTrack.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/globotrack/internal/auth"
	"github.com/raphaelgruber/globotrack/internal/config"
	"github.com/raphaelgruber/globotrack/internal/gateway"
	"github.com/raphaelgruber/globotrack/internal/metrics"
	"github.com/raphaelgruber/globotrack/internal/server"
	"github.com/raphaelgruber/globotrack/internal/service"
	"github.com/raphaelgruber/globotrack/internal/session"
	"github.com/raphaelgruber/globotrack/internal/store"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel, os.Stderr)
	defer func() { _ = cleanup() }()

	logger.Info("globotrack-server starting",
		"version", version,
		"port", cfg.ServerPort,
		"llm_provider", cfg.LLMProvider,
		"llm_model", cfg.LLMModel,
		"store", cfg.Store,
	)

	// Create context cancelled on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()

	// Open profile store
	setupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	profileStore, closeStore, err := store.Open(setupCtx, cfg, collector, logger)
	if err != nil {
		cancel()
		logger.Error("failed to open profile store", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing profile store")
		_ = closeStore(context.Background())
	}()

	ctrl, err := session.Open(setupCtx, profileStore, auth.LocalVerifier{}, logger)
	if err != nil {
		cancel()
		logger.Error("failed to open session", "error", err)
		os.Exit(1)
	}

	// Create AI gateway
	gw, err := gateway.NewFromConfig(setupCtx, cfg, collector, logger)
	cancel()
	if err != nil {
		logger.Error("failed to create AI gateway", "error", err)
		os.Exit(1)
	}

	srv := server.New(version, server.Deps{
		Session: ctrl,
		Search:  service.NewSearchBoard(gw, logger),
		Chat:    service.NewChatService(gw, logger),
		Metrics: collector,
		Logger:  logger,
	})

	// Run server (blocks until context cancelled)
	if err := srv.Run(ctx, ":"+cfg.ServerPort); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
