package configs

import "time"

// Kafka configures the broker used for advertiser notifications and ad event
// ingestion. When disabled, notifications are only logged and events are
// recorded synchronously.
type Kafka struct {
	Enabled bool     `env:"ENABLED" envDefault:"false"`
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	// NotificationsTopic receives advertiser notices.
	NotificationsTopic string `env:"NOTIFICATIONS_TOPIC" envDefault:"ads.notifications"`
	// EventsTopic is the ingestion queue the worker consumes.
	EventsTopic string `env:"EVENTS_TOPIC" envDefault:"ads.events"`
	// RecordedTopic receives events after they are metered.
	RecordedTopic string        `env:"RECORDED_TOPIC" envDefault:"ads.events.recorded"`
	GroupID       string        `env:"GROUP_ID" envDefault:"social-ads-worker"`
	BatchTimeout  time.Duration `env:"BATCH_TIMEOUT" envDefault:"10ms"`
	RetryBackoff  time.Duration `env:"RETRY_BACKOFF" envDefault:"1s"`
}
