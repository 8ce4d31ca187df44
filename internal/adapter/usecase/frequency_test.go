package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-ads/internal/core/domain"
)

// TestFrequencyCapWindow caps a viewer at three impressions per 24 hours and
// lets them through again once the window has moved past the first view.
func TestFrequencyCapWindow(t *testing.T) {
	store := newMemStore()
	capper := NewFrequencyCapper(store)
	groupID := uuid.New()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := start
	capper.now = func() time.Time { return clock }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := capper.Allowed(ctx, groupID, "u1", 3, 24)
		require.NoError(t, err)
		require.True(t, ok, "impression %d", i+1)
		require.NoError(t, store.AppendEvent(ctx, domain.AdEvent{
			ID: uuid.New(), AdGroupID: groupID, UserID: "u1",
			EventType: domain.EventImpression, CreatedAt: clock,
		}))
		clock = clock.Add(time.Hour)
	}

	ok, err := capper.Allowed(ctx, groupID, "u1", 3, 24)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = capper.Allowed(ctx, groupID, "u2", 3, 24)
	require.NoError(t, err)
	assert.True(t, ok, "other viewers are not capped")

	clock = start.Add(24*time.Hour + time.Minute)
	ok, err = capper.Allowed(ctx, groupID, "u1", 3, 24)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFrequencyCapDisabled(t *testing.T) {
	capper := NewFrequencyCapper(newMemStore())
	ok, err := capper.Allowed(context.Background(), uuid.New(), "u1", 0, 24)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = capper.Allowed(context.Background(), uuid.New(), "", 1, 24)
	require.NoError(t, err)
	assert.True(t, ok)
}
