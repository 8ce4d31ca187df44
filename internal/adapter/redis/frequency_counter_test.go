package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-ads/internal/config/configs"
	"social-ads/internal/core/domain"
)

func TestFrequencyKey(t *testing.T) {
	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	assert.Equal(t, "ads:freq:0f8fad5b-d9cb-469f-a165-70867728950e:u1", frequencyKey(id, "u1"))
}

func TestFrequencyCounterRetention(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, NewFrequencyCounter(nil, 0).Retention())
	assert.Equal(t, 48*time.Hour, NewFrequencyCounter(nil, 48*time.Hour).Retention())
}

// Runs against a live server when REDIS_TEST_ADDR is set.
func TestFrequencyCounter_Window(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, configs.Redis{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	counter := NewFrequencyCounter(client, 48*time.Hour)
	group := uuid.New()
	now := time.Now()
	defer client.Del(ctx, frequencyKey(group, "viewer"))

	for i, age := range []time.Duration{30 * time.Hour, 2 * time.Hour, time.Minute} {
		require.NoError(t, counter.RecordImpression(ctx, domain.AdEvent{
			ID:        uuid.New(),
			AdGroupID: group,
			UserID:    "viewer",
			EventType: domain.EventImpression,
			CreatedAt: now.Add(-age),
		}), "event %d", i)
	}
	// clicks are not impressions
	require.NoError(t, counter.RecordImpression(ctx, domain.AdEvent{
		ID: uuid.New(), AdGroupID: group, UserID: "viewer", EventType: domain.EventClick, CreatedAt: now,
	}))

	n, err := counter.CountImpressions(ctx, group, "viewer", now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = counter.CountImpressions(ctx, group, "viewer", now.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
