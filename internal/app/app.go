// Package app assembles the engine from configuration. It is shared by the
// API server and the event worker.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"social-ads/internal/adapter/kafka"
	"social-ads/internal/adapter/postgres"
	"social-ads/internal/adapter/redis"
	"social-ads/internal/adapter/usecase"
	"social-ads/internal/config"
	"social-ads/internal/core/port"
	"social-ads/internal/db"
)

// App holds the wired use cases and the resources they depend on.
type App struct {
	Pool      *pgxpool.Pool
	Settings  *usecase.SettingsCache
	Auction   *usecase.AuctionUseCase
	Events    *usecase.EventUseCase
	Wallets   *usecase.WalletUseCase
	Lifecycle *usecase.LifecycleUseCase
	Campaigns *usecase.CampaignUseCase
	// Producer is nil when Kafka is disabled.
	Producer *kafka.Producer

	closers []func() error
}

// New connects to the configured backends and wires the engine. The caller
// must Close the returned App.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.Pool, err = db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.closers = append(a.closers, func() error { a.Pool.Close(); return nil })

	var (
		campaigns = postgres.NewCampaignRepository(a.Pool)
		ads       = postgres.NewAdRepository(a.Pool)
		wallets   = postgres.NewWalletRepository(a.Pool)
		events    = postgres.NewEventRepository(a.Pool)
	)

	var (
		counter   port.ImpressionCounter = events
		capWindow time.Duration
	)
	if cfg.Engine.UseRedis() {
		if !cfg.Redis.Enabled {
			return nil, errors.New("frequency backend redis requires REDIS_ENABLED")
		}
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		rc := redis.NewFrequencyCounter(client, cfg.Redis.Retention)
		counter, capWindow = rc, rc.Retention()
		logger.Info("frequency caps counted in redis")
	}

	var (
		notifier  port.Notifier = kafka.NewLogNotifier(logger)
		publisher port.EventPublisher
	)
	if cfg.Kafka.Enabled {
		a.Producer, err = kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.Producer.Close)
		notifier = kafka.NewNotifier(a.Producer, cfg.Kafka.NotificationsTopic)
		publisher = kafka.NewEventPublisher(a.Producer, cfg.Kafka.RecordedTopic)
	}

	a.Settings = usecase.NewSettingsCache(cfg.Engine.Settings(), postgres.NewSettingsRepository(a.Pool), logger)
	if err := a.Settings.Refresh(ctx); err != nil {
		logger.Warn("using configured engine settings", slog.String("error", err.Error()))
	}

	a.Wallets = usecase.NewWalletUseCase(wallets, notifier, logger)
	a.Lifecycle = usecase.NewLifecycleUseCase(campaigns, ads, wallets, a.Wallets, notifier, a.Settings, logger)
	a.Campaigns = usecase.NewCampaignUseCase(campaigns, ads, wallets, logger)
	a.Campaigns.LimitCapWindow(capWindow)
	a.Events = usecase.NewEventUseCase(events, ads, campaigns, wallets, a.Wallets, a.Lifecycle, counter, publisher, logger)
	a.Auction = usecase.NewAuctionUseCase(ads, usecase.NewFrequencyCapper(counter), a.Settings, logger)
	return a, nil
}

// IngestPublisher returns the publisher for the worker's ingestion topic,
// or nil when Kafka is disabled.
func (a *App) IngestPublisher(cfg config.Config) port.EventPublisher {
	if a.Producer == nil {
		return nil
	}
	return kafka.NewEventPublisher(a.Producer, cfg.Kafka.EventsTopic)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
