package configs

import "time"

// Redis configures the optional Redis frequency-cap store.
type Redis struct {
	Enabled bool `env:"ENABLED" envDefault:"false"`
	// Addr is either host:port or a redis:// URL.
	Addr     string `env:"ADDRESS" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	// Retention is how long impressions are kept per viewer. It must cover
	// the longest frequency cap period.
	Retention time.Duration `env:"RETENTION" envDefault:"168h"`
}
