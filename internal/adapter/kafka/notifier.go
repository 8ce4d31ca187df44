package kafka

import (
	"context"
	"log/slog"

	"social-ads/internal/core/domain"
)

// Notifier publishes advertiser notices, keyed by advertiser.
type Notifier struct {
	producer *Producer
	topic    string
}

func NewNotifier(producer *Producer, topic string) *Notifier {
	return &Notifier{producer: producer, topic: topic}
}

func (n *Notifier) Notify(ctx context.Context, msg domain.Notification) error {
	return n.producer.publish(ctx, n.topic, msg.AdvertiserID.String(), string(msg.Type), msg)
}

// LogNotifier writes notices to the log. It is used when no broker is
// configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, msg domain.Notification) error {
	n.logger.InfoContext(ctx, "notification",
		slog.String("type", string(msg.Type)),
		slog.String("advertiser_id", msg.AdvertiserID.String()),
		slog.String("entity_id", msg.EntityID.String()),
		slog.String("message", msg.Message))
	return nil
}
