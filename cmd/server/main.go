// Package main is the entry point for the collaboration graph server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fidde/collab_graph/internal/api"
	"github.com/fidde/collab_graph/internal/cache"
	"github.com/fidde/collab_graph/internal/config"
	"github.com/fidde/collab_graph/internal/musicdb"
	"github.com/fidde/collab_graph/internal/ratelimit"
)

func main() {
	configPath := flag.String("config", os.Getenv("CG_CONFIG"), "path to YAML config file (optional)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting collab graph server",
		"addr", cfg.Server.Addr,
		"backend", cfg.Database.Backend,
		"cache_dir", cfg.Cache.Dir,
	)

	ctx := context.Background()
	source, err := musicdb.Open(ctx, musicdb.Config{
		Backend:            cfg.Database.Backend,
		SQLitePath:         cfg.Database.SQLitePath,
		ClickHouseAddr:     cfg.Database.ClickHouse.Addr,
		ClickHouseDatabase: cfg.Database.ClickHouse.Database,
		ClickHouseUsername: cfg.Database.ClickHouse.Username,
		ClickHousePassword: cfg.Database.ClickHouse.Password,
	}, logger)
	if err != nil {
		logger.Error("opening query source", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := source.Close(); err != nil {
			logger.Error("closing query source", "error", err)
		}
	}()

	respCache := cache.New(cfg.Cache.Dir, logger)
	limiter := ratelimit.New(cfg.RateLimit.Window.Std(), cfg.RateLimit.MaxRequests)

	server := api.NewServer(cfg.Server.Addr, source, respCache, limiter, logger, api.Options{
		StaticDir: cfg.Server.StaticDir,
	})

	errChan := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		errChan <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutting down server", "error", err)
	}

	logger.Info("shutdown complete")
}

// logLevel reads CG_LOG_LEVEL; defaults to info.
func logLevel() slog.Level {
	switch os.Getenv("CG_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
