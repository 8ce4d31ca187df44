package configs

import (
	"strings"
	"time"

	"social-ads/internal/core/domain"
)

// Engine holds defaults for the auction and lifecycle engine. Rows in the
// platform_settings table override the switches at runtime.
type Engine struct {
	AuctionTimeout    time.Duration `env:"AUCTION_TIMEOUT" envDefault:"50ms"`
	CandidateRetries  int           `env:"CANDIDATE_RETRIES" envDefault:"2"`
	RetryBackoff      time.Duration `env:"RETRY_BACKOFF" envDefault:"5ms"`
	SecondPrice       bool          `env:"SECOND_PRICE" envDefault:"true"`
	AutoActivate      bool          `env:"AUTO_ACTIVATE" envDefault:"true"`
	QualityWindowDays int           `env:"QUALITY_WINDOW_DAYS" envDefault:"7"`

	// SettingsRefresh is how often overrides are reloaded.
	SettingsRefresh time.Duration `env:"SETTINGS_REFRESH" envDefault:"30s"`
	// ReconcileInterval is how often orphaned campaigns are repaired. Zero
	// disables the sweep.
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"5m"`
	// FrequencyBackend selects where impressions are counted: "postgres"
	// (default) or "redis".
	FrequencyBackend string `env:"FREQUENCY_BACKEND" envDefault:"postgres"`
}

// Settings converts the configured defaults into the base snapshot.
func (c Engine) Settings() domain.Settings {
	return domain.Settings{
		AuctionTimeout:    c.AuctionTimeout,
		CandidateRetries:  c.CandidateRetries,
		RetryBackoff:      c.RetryBackoff,
		SecondPrice:       c.SecondPrice,
		AutoActivate:      c.AutoActivate,
		QualityWindowDays: c.QualityWindowDays,
	}
}

// UseRedis reports whether impressions are counted in Redis.
func (c Engine) UseRedis() bool {
	return strings.EqualFold(c.FrequencyBackend, "redis")
}
