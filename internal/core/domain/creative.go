package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdStatus is the review state of an ad.
type AdStatus string

const (
	AdDraft         AdStatus = "DRAFT"
	AdPendingReview AdStatus = "PENDING_REVIEW"
	AdInReview      AdStatus = "IN_REVIEW"
	AdApproved      AdStatus = "APPROVED"
	AdActive        AdStatus = "ACTIVE"
	AdRejected      AdStatus = "REJECTED"
)

var adTransitions = map[AdStatus][]AdStatus{
	AdDraft:         {AdPendingReview},
	AdPendingReview: {AdInReview, AdApproved, AdRejected},
	AdInReview:      {AdApproved, AdRejected},
	AdApproved:      {AdActive, AdRejected},
	AdActive:        {AdRejected},
	AdRejected:      {AdDraft},
}

// Valid reports whether s is a known ad status.
func (s AdStatus) Valid() bool {
	_, ok := adTransitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine allows moving from s to
// next.
func (s AdStatus) CanTransitionTo(next AdStatus) bool {
	for _, allowed := range adTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Servable reports whether an ad in this status may win an auction.
func (s AdStatus) Servable() bool {
	return s == AdApproved || s == AdActive
}

// AwaitingReview reports whether the ad is queued for or under review.
func (s AdStatus) AwaitingReview() bool {
	return s == AdPendingReview || s == AdInReview
}

// Creative holds the renderable fields of an ad.
type Creative struct {
	Headline       string `json:"headline"`
	Description    string `json:"description"`
	MediaURL       string `json:"media_url"`
	CallToAction   string `json:"call_to_action"`
	DestinationURL string `json:"destination_url"`
}

// HasCopy reports whether both headline and description are filled in.
func (c Creative) HasCopy() bool {
	return c.Headline != "" && c.Description != ""
}

// HasMedia reports whether the creative has a primary media asset.
func (c Creative) HasMedia() bool {
	return c.MediaURL != ""
}

// Ad is a single creative inside an ad group. CampaignID is denormalized from
// the ad group.
type Ad struct {
	ID              uuid.UUID
	AdGroupID       uuid.UUID
	CampaignID      uuid.UUID
	Status          AdStatus
	Creative        Creative
	RejectionReason string
	// Reopened is set once a rejected ad has been moved back to DRAFT. A
	// second reopen is refused.
	Reopened  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
