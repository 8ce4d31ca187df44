package config

import (
	"github.com/caarlos0/env/v11"

	"social-ads/internal/config/configs"
)

// Config aggregates all configuration sections for the API server and the
// event worker. Fields are populated from environment variables using the
// caarlos0/env library; nested structs are tagged with envPrefix so their
// fields are parsed with the given prefix. Use Load to construct a Config.
type Config struct {
	// Env names the deployment environment (e.g. prod, dev). It is attached
	// to every log record.
	Env string `env:"ENV" envDefault:"prod"`

	// HTTP holds configuration for the HTTP server (HTTP_*).
	HTTP configs.HTTP `envPrefix:"HTTP_"`

	// Log configures the structured logger (LOG_*).
	Log configs.Logger `envPrefix:"LOG_"`

	// Psql configures the PostgreSQL connection (PSQL_*).
	Psql configs.Postgres `envPrefix:"PSQL_"`

	// Redis configures the optional frequency-cap store (REDIS_*).
	Redis configs.Redis `envPrefix:"REDIS_"`

	// Kafka configures notification delivery and event ingestion (KAFKA_*).
	Kafka configs.Kafka `envPrefix:"KAFKA_"`

	// Engine holds the auction and lifecycle defaults (ENGINE_*).
	Engine configs.Engine `envPrefix:"ENGINE_"`
}

// Load reads configuration from environment variables into a Config. All
// fields fall back to their defaults when no variable is provided.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
