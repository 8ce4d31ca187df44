package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"social-ads/internal/adapter/kafka"
	"social-ads/internal/app"
	"social-ads/internal/config"
)

// main runs the ad event worker: it consumes the ingestion topic and meters
// every event through the same engine the API server uses.
func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return 1
	}

	logger := cfg.Log.NewLogger(os.Stdout, slog.String("env", cfg.Env), slog.String("process", "worker"))

	if !cfg.Kafka.Enabled {
		logger.Error("worker requires KAFKA_ENABLED=true")
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup error", slog.Any("error", err))
		return 1
	}
	defer engine.Close()
	go engine.Settings.Run(ctx, cfg.Engine.SettingsRefresh)

	consumer, err := kafka.NewConsumer(cfg.Kafka, engine.Events, logger)
	if err != nil {
		logger.Error("consumer error", slog.Any("error", err))
		return 1
	}
	defer consumer.Close()

	if err = consumer.Run(ctx); err != nil {
		logger.Error("consumer stopped", slog.Any("error", err))
		return 1
	}
	return 0
}
