package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"social-ads/internal/core/domain"
)

const keyPrefix = "ads:freq:"

// FrequencyCounter keeps one sorted set per (ad group, user) holding event
// ids scored by impression time in milliseconds. Members older than the
// retention are trimmed on every write, so retention must be at least the
// longest frequency cap period in use.
type FrequencyCounter struct {
	client    goredis.Cmdable
	retention time.Duration
}

// NewFrequencyCounter returns a counter that keeps impressions for retention.
func NewFrequencyCounter(client goredis.Cmdable, retention time.Duration) *FrequencyCounter {
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	return &FrequencyCounter{client: client, retention: retention}
}

// Retention is the longest window the counter can answer for.
func (c *FrequencyCounter) Retention() time.Duration { return c.retention }

func frequencyKey(adGroupID uuid.UUID, userID string) string {
	return keyPrefix + adGroupID.String() + ":" + userID
}

// CountImpressions counts impressions recorded at or after since.
func (c *FrequencyCounter) CountImpressions(ctx context.Context, adGroupID uuid.UUID, userID string, since time.Time) (int64, error) {
	n, err := c.client.ZCount(ctx, frequencyKey(adGroupID, userID),
		strconv.FormatInt(since.UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("count impressions: %w", err)
	}
	return n, nil
}

// RecordImpression adds the event to the viewer's window. Non-impression
// events and anonymous viewers are ignored. Re-recording the same event id
// only refreshes its score.
func (c *FrequencyCounter) RecordImpression(ctx context.Context, e domain.AdEvent) error {
	if e.EventType != domain.EventImpression || e.UserID == "" {
		return nil
	}
	at := e.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	key := frequencyKey(e.AdGroupID, e.UserID)
	cutoff := at.Add(-c.retention).UnixMilli()

	_, err := c.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.ZAdd(ctx, key, goredis.Z{Score: float64(at.UnixMilli()), Member: e.ID.String()})
		p.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10))
		p.Expire(ctx, key, c.retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record impression: %w", err)
	}
	return nil
}
