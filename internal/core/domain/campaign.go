package domain

import (
	"time"

	"github.com/google/uuid"
)

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignDraft         CampaignStatus = "DRAFT"
	CampaignPendingReview CampaignStatus = "PENDING_REVIEW"
	CampaignActive        CampaignStatus = "ACTIVE"
	CampaignPaused        CampaignStatus = "PAUSED"
	CampaignRejected      CampaignStatus = "REJECTED"
	CampaignCompleted     CampaignStatus = "COMPLETED"
	CampaignArchived      CampaignStatus = "ARCHIVED"
)

var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignDraft:         {CampaignPendingReview, CampaignArchived},
	CampaignPendingReview: {CampaignActive, CampaignRejected, CampaignArchived},
	CampaignActive:        {CampaignPaused, CampaignCompleted, CampaignArchived},
	CampaignPaused:        {CampaignActive, CampaignCompleted, CampaignArchived},
	CampaignRejected:      {CampaignArchived},
	CampaignCompleted:     {CampaignArchived},
	CampaignArchived:      nil,
}

// Valid reports whether s is a known campaign status.
func (s CampaignStatus) Valid() bool {
	_, ok := campaignTransitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine allows moving from s to
// next.
func (s CampaignStatus) CanTransitionTo(next CampaignStatus) bool {
	for _, allowed := range campaignTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BlocksAutoActivation reports whether a campaign in this status must be left
// alone when one of its ads gets approved. Only DRAFT and PENDING_REVIEW
// campaigns are advanced automatically.
func (s CampaignStatus) BlocksAutoActivation() bool {
	switch s {
	case CampaignDraft, CampaignPendingReview:
		return false
	case CampaignActive, CampaignPaused, CampaignCompleted, CampaignArchived, CampaignRejected:
		return true
	default:
		return true
	}
}

// Metered reports whether delivery against a campaign in this status is
// charged. Events that reach a campaign after it left delivery are kept
// for stats only.
func (s CampaignStatus) Metered() bool {
	return s == CampaignActive || s == CampaignPaused
}

// Objective is the advertiser's declared goal for a campaign.
type Objective string

const (
	ObjectiveAwareness   Objective = "AWARENESS"
	ObjectiveTraffic     Objective = "TRAFFIC"
	ObjectiveEngagement  Objective = "ENGAGEMENT"
	ObjectiveConversions Objective = "CONVERSIONS"
	// ObjectiveBoost promotes an existing post with a prepaid budget that is
	// taken from the wallet when the campaign is submitted for review.
	ObjectiveBoost Objective = "BOOST"
)

// Valid reports whether o is a known objective.
func (o Objective) Valid() bool {
	switch o {
	case ObjectiveAwareness, ObjectiveTraffic, ObjectiveEngagement, ObjectiveConversions, ObjectiveBoost:
		return true
	}
	return false
}

// ReservesBudget reports whether the objective prepays its budget on
// submission. Such campaigns get the budget refunded when rejected in review
// and the unspent remainder refunded when closed.
func (o Objective) ReservesBudget() bool {
	return o == ObjectiveBoost
}

// BudgetType selects whether BudgetAmount caps spend per UTC day or over the
// whole campaign.
type BudgetType string

const (
	BudgetDaily    BudgetType = "DAILY"
	BudgetLifetime BudgetType = "LIFETIME"
)

// Valid reports whether t is a known budget type.
func (t BudgetType) Valid() bool {
	return t == BudgetDaily || t == BudgetLifetime
}

// Campaign represents an advertising campaign owned by one advertiser.
// Amounts are stored in integer minor currency units (e.g. cents).
type Campaign struct {
	ID           uuid.UUID
	AdvertiserID uuid.UUID
	Name         string
	Objective    Objective
	BudgetType   BudgetType
	BudgetAmount int64 // reserved, not yet spent
	BudgetSpent  int64 // metered spend in the current budget period
	// SpendPeriod is the UTC day BudgetSpent refers to for DAILY budgets.
	SpendPeriod time.Time
	Status      CampaignStatus
	StartDate   *time.Time
	EndDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RemainingBudget returns how much can still be spent in the current period.
func (c Campaign) RemainingBudget() int64 {
	if c.BudgetSpent >= c.BudgetAmount {
		return 0
	}
	return c.BudgetAmount - c.BudgetSpent
}

// RollSpendPeriod resets BudgetSpent when a DAILY campaign crosses into a new
// UTC day. It reports whether a reset happened.
func (c *Campaign) RollSpendPeriod(now time.Time) bool {
	if c.BudgetType != BudgetDaily {
		return false
	}
	day := now.UTC().Truncate(24 * time.Hour)
	if !c.SpendPeriod.Before(day) {
		return false
	}
	c.SpendPeriod = day
	c.BudgetSpent = 0
	return true
}

// Running reports whether the campaign is inside its flight dates.
func (c Campaign) Running(now time.Time) bool {
	if c.StartDate != nil && now.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && now.After(*c.EndDate) {
		return false
	}
	return true
}
