package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies an ad event.
type EventType string

const (
	EventImpression EventType = "IMPRESSION"
	EventClick      EventType = "CLICK"
	EventEngagement EventType = "ENGAGEMENT"
	EventConversion EventType = "CONVERSION"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventImpression, EventClick, EventEngagement, EventConversion:
		return true
	}
	return false
}

// StatsCounter returns the daily stats counter this event type increments.
func (t EventType) StatsCounter() Counter {
	switch t {
	case EventImpression:
		return CounterAdImpressions
	case EventClick:
		return CounterAdClicks
	case EventEngagement:
		return CounterAdEngagements
	case EventConversion:
		return CounterAdConversions
	default:
		return ""
	}
}

// AdEvent is an append-only fact about a delivered ad. Rows are never
// updated.
type AdEvent struct {
	ID         uuid.UUID `json:"id"`
	AdID       uuid.UUID `json:"ad_id"`
	AdGroupID  uuid.UUID `json:"ad_group_id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	UserID     string    `json:"user_id"`
	EventType  EventType `json:"event_type"`
	// ClearingPrice is the auction price for the slot the event belongs to.
	// Zero means the ad group bid is used.
	ClearingPrice int64     `json:"clearing_price,omitempty"`
	CostAmount    int64     `json:"cost_amount"`
	Placement     string    `json:"placement"`
	CreatedAt     time.Time `json:"created_at"`
}

// AdPerformance aggregates recent events for an ad, used by the quality
// scorer.
type AdPerformance struct {
	Impressions int64
	Clicks      int64
	Engagements int64
}

// CTR returns clicks per impression, or zero without impressions.
func (p AdPerformance) CTR() float64 {
	if p.Impressions <= 0 {
		return 0
	}
	return float64(p.Clicks) / float64(p.Impressions)
}

// EngagementRate returns engagements per impression, or zero without
// impressions.
func (p AdPerformance) EngagementRate() float64 {
	if p.Impressions <= 0 {
		return 0
	}
	return float64(p.Engagements) / float64(p.Impressions)
}

// Counter names a numeric field that may be bumped with the generic atomic
// increment primitive.
type Counter string

const (
	CounterAdImpressions    Counter = "ad_impressions"
	CounterAdClicks         Counter = "ad_clicks"
	CounterAdEngagements    Counter = "ad_engagements"
	CounterAdConversions    Counter = "ad_conversions"
	CounterPromoRedemptions Counter = "promo_redemptions"
)
