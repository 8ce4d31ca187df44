package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
)

// StaticSettings is a SettingsProvider that always returns the same
// snapshot.
type StaticSettings domain.Settings

func (s StaticSettings) Snapshot() domain.Settings { return domain.Settings(s) }

// SettingsCache keeps the latest settings snapshot in memory. Readers never
// block; Refresh swaps in a new snapshot loaded from the source.
type SettingsCache struct {
	base    domain.Settings
	source  port.SettingsSource
	logger  *slog.Logger
	current atomic.Pointer[domain.Settings]
}

// NewSettingsCache starts with base until the first successful refresh.
func NewSettingsCache(base domain.Settings, source port.SettingsSource, logger *slog.Logger) *SettingsCache {
	c := &SettingsCache{base: base, source: source, logger: logger}
	c.current.Store(&base)
	return c
}

func (c *SettingsCache) Snapshot() domain.Settings {
	return *c.current.Load()
}

// Refresh reloads the overrides. On failure the previous snapshot stays in
// place.
func (c *SettingsCache) Refresh(ctx context.Context) error {
	next, err := c.source.LoadSettings(ctx, c.base)
	if err != nil {
		return err
	}
	c.current.Store(&next)
	return nil
}

// Run refreshes the snapshot every interval until ctx is cancelled.
func (c *SettingsCache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
				c.logger.Warn("settings refresh failed", slog.String("error", err.Error()))
			}
		}
	}
}
