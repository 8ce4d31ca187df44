package domain

import "github.com/google/uuid"

// AuctionOutcome tells the placement caller whether the slot was filled.
type AuctionOutcome string

const (
	OutcomeWon          AuctionOutcome = "WON"
	OutcomeNoEligibleAd AuctionOutcome = "NO_ELIGIBLE_AD"
)

// AuctionResult is returned by selectWinner. An empty slot is a normal
// result, not an error.
type AuctionResult struct {
	Outcome AuctionOutcome `json:"outcome"`
	// Reason explains an empty slot (no candidates, timeout, ...).
	Reason       string       `json:"reason,omitempty"`
	AuctionID    uuid.UUID    `json:"auction_id"`
	AdID         uuid.UUID    `json:"ad_id"`
	AdGroupID    uuid.UUID    `json:"ad_group_id"`
	CampaignID   uuid.UUID    `json:"campaign_id"`
	Creative     Creative     `json:"creative"`
	BillingModel BillingModel `json:"billing_model"`
	// WinningBid is the price the advertiser is charged per chargeable
	// event.
	WinningBid     int64   `json:"winning_bid"`
	EffectiveBid   float64 `json:"effective_bid"`
	QualityScore   float64 `json:"quality_score"`
	TargetingScore float64 `json:"targeting_score"`
	AdRank         float64 `json:"ad_rank"`
}

// NoEligibleAd builds an empty-slot result.
func NoEligibleAd(reason string) AuctionResult {
	return AuctionResult{Outcome: OutcomeNoEligibleAd, Reason: reason}
}

// Filled reports whether an ad won the slot.
func (r AuctionResult) Filled() bool {
	return r.Outcome == OutcomeWon
}
