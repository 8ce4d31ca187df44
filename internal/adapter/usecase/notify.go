package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
	"social-ads/internal/metrics"
)

// notify hands n to the sink. Delivery failures are logged and counted but
// never undo the change that triggered them.
func notify(ctx context.Context, logger *slog.Logger, sink port.Notifier, n domain.Notification) {
	if sink == nil {
		return
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if err := sink.Notify(ctx, n); err != nil {
		metrics.NotificationFailures.Inc()
		logger.Warn("notification not delivered",
			slog.String("type", string(n.Type)),
			slog.String("advertiser_id", n.AdvertiserID.String()),
			slog.String("error", err.Error()))
	}
}
