package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "social-ads/internal/adapter/http"
	"social-ads/internal/app"
	"social-ads/internal/config"
	"social-ads/internal/db"
)

// main is the entry point of the API server. It loads configuration,
// optionally migrates and seeds the database, wires the engine and serves
// HTTP until a termination signal arrives. The settings refresh and the
// orphan sweep run in the background for the lifetime of the server.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return
	}
	logger := cfg.Log.NewLogger(os.Stdout, slog.String("env", cfg.Env))

	if cfg.Psql.RunMigrations {
		if err = db.Migrate(cfg.Psql.Addr.String(), logger); err != nil {
			logger.Error("migration error", slog.Any("error", err))
			return
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup error", slog.Any("error", err))
		return
	}
	defer engine.Close()

	if cfg.Psql.Seed {
		if err = db.Seed(ctx, engine.Pool); err != nil {
			logger.Error("seed error", slog.Any("error", err))
			return
		}
		logger.Info("demo data seeded")
	}

	go engine.Settings.Run(ctx, cfg.Engine.SettingsRefresh)
	if cfg.Engine.ReconcileInterval > 0 {
		go engine.Lifecycle.RunSweep(ctx, cfg.Engine.ReconcileInterval)
	}

	handler := httpadapter.NewHandler(httpadapter.Services{
		Auction:   engine.Auction,
		Events:    engine.Events,
		Wallets:   engine.Wallets,
		Lifecycle: engine.Lifecycle,
		Campaigns: engine.Campaigns,
		Ingest:    engine.IngestPublisher(cfg),
	}, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err = <-serveErr:
		logger.Error("server error", slog.Any("error", err))
		return
	case <-ctx.Done():
	}
	exitCode = 0

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer stop()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}

