package port

import (
	"context"

	"social-ads/internal/core/domain"
)

// Notifier delivers advertiser notices. Delivery is fire-and-forget: a
// failure is logged by the caller and never undoes the state change that
// triggered it.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// EventPublisher hands ad events to an asynchronous ingestion pipeline.
type EventPublisher interface {
	PublishEvent(ctx context.Context, e domain.AdEvent) error
}
