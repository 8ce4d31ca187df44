package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"social-ads/internal/core/port"
)

// defaultCapWindow applies when a cap is set without a period.
const defaultCapWindow = 24 * time.Hour

// FrequencyCapper limits how often one viewer sees an ad group.
//
// The check and the later impression write are not atomic, so two
// concurrent auctions for the same viewer may both pass at count cap-1.
// The overshoot is bounded by the number of in-flight auctions.
type FrequencyCapper struct {
	counter port.ImpressionCounter
	now     func() time.Time
}

func capWindow(hours int) time.Duration {
	if hours > 0 {
		return time.Duration(hours) * time.Hour
	}
	return defaultCapWindow
}

func NewFrequencyCapper(counter port.ImpressionCounter) *FrequencyCapper {
	return &FrequencyCapper{counter: counter, now: time.Now}
}

// Allowed reports whether the viewer has seen fewer than limit impressions
// of the ad group within the trailing window. A non-positive limit or an
// anonymous viewer is never capped.
func (f *FrequencyCapper) Allowed(ctx context.Context, adGroupID uuid.UUID, userID string, limit, windowHours int) (bool, error) {
	if limit <= 0 || userID == "" {
		return true, nil
	}
	seen, err := f.counter.CountImpressions(ctx, adGroupID, userID, f.now().Add(-capWindow(windowHours)))
	if err != nil {
		return false, err
	}
	return seen < int64(limit), nil
}
