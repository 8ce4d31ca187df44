package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"social-ads/internal/core/domain"
)

// AuctionUseCase fills ad slots. This is the synchronous entry point used by
// the content-serving layer.
type AuctionUseCase interface {
	// SelectWinner picks the ad for the slot. An empty slot is reported with
	// domain.OutcomeNoEligibleAd and a nil error; errors are reserved for
	// infrastructure failures that are not timeouts.
	SelectWinner(ctx context.Context, req domain.PlacementRequest) (domain.AuctionResult, error)
}

// EventUseCase ingests delivered ad events and meters their cost.
type EventUseCase interface {
	// RecordEvent stores the event and, when it is chargeable under the ad
	// group's billing model, debits spend atomically. Replaying an event id
	// returns a receipt marked Duplicate without charging again.
	RecordEvent(ctx context.Context, event domain.AdEvent) (EventReceipt, error)

	// GetStats returns aggregated events and cost for the specified campaign
	// (optional) and time period.
	GetStats(ctx context.Context, req StatsReq) (*StatsResp, error)
}

// WalletUseCase is the wallet ledger. Every mutation is one atomic unit of
// work serialized per wallet.
type WalletUseCase interface {
	GetWallet(ctx context.Context, walletID uuid.UUID) (domain.WalletAccount, error)
	Transactions(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.WalletTransaction, error)
	Credit(ctx context.Context, req domain.LedgerRequest) (domain.WalletTransaction, error)
	Debit(ctx context.Context, req domain.LedgerRequest) (domain.WalletTransaction, error)
	RedeemPromo(ctx context.Context, req RedeemRequest) (domain.WalletTransaction, error)
	Refund(ctx context.Context, req RefundRequest) (domain.WalletTransaction, error)
	ResolveDispute(ctx context.Context, req DisputeResolution) (domain.WalletTransaction, error)
	Freeze(ctx context.Context, walletID uuid.UUID, reason, actor string) (domain.WalletAccount, error)
	Unfreeze(ctx context.Context, walletID uuid.UUID, actor string) (domain.WalletAccount, error)
	// Verify recomputes the balance from completed transactions and returns
	// domain.ErrLedgerInvariant on mismatch.
	Verify(ctx context.Context, walletID uuid.UUID) error
}

// LifecycleUseCase is the single place where campaign and ad status change.
type LifecycleUseCase interface {
	SubmitCampaign(ctx context.Context, cmd Command) (domain.Campaign, error)
	ApproveCampaign(ctx context.Context, cmd Command) (domain.Campaign, error)
	RejectCampaign(ctx context.Context, cmd Command) (domain.Campaign, error)
	PauseCampaign(ctx context.Context, cmd Command) (domain.Campaign, error)
	ResumeCampaign(ctx context.Context, cmd Command) (domain.Campaign, error)
	CompleteCampaign(ctx context.Context, cmd Command) (domain.Campaign, error)
	ArchiveCampaign(ctx context.Context, cmd Command) (domain.Campaign, error)

	SubmitAd(ctx context.Context, cmd Command) (domain.Ad, error)
	StartReview(ctx context.Context, cmd Command) (domain.Ad, error)
	ApproveAd(ctx context.Context, cmd Command) (domain.Ad, error)
	ActivateAd(ctx context.Context, cmd Command) (domain.Ad, error)
	RejectAd(ctx context.Context, cmd Command) (domain.Ad, error)
	ReopenAd(ctx context.Context, cmd Command) (domain.Ad, error)

	// ReconcileOrphans force-activates campaigns that own a servable ad but
	// were never advanced. It returns how many were repaired.
	ReconcileOrphans(ctx context.Context) (int, error)
}

// CampaignUseCase builds campaigns, ad groups and ads in DRAFT.
type CampaignUseCase interface {
	CreateCampaign(ctx context.Context, in NewCampaign) (domain.Campaign, error)
	CreateAdGroup(ctx context.Context, in NewAdGroup) (domain.AdGroup, error)
	CreateAd(ctx context.Context, in NewAd) (domain.Ad, error)

	GetCampaign(ctx context.Context, id uuid.UUID) (domain.Campaign, error)
	GetAd(ctx context.Context, id uuid.UUID) (domain.Ad, error)
	ListAds(ctx context.Context, campaignID uuid.UUID) ([]domain.Ad, error)
}

// Command targets one campaign or ad with an actor and a reason for the
// audit log.
type Command struct {
	ID     uuid.UUID
	Actor  string
	Reason string
}

// EventReceipt reports what RecordEvent did.
type EventReceipt struct {
	Event       domain.AdEvent
	Billed      bool
	Duplicate   bool
	Transaction *domain.WalletTransaction
	// Reason explains why a chargeable event was not billed.
	Reason string
}

// RedeemRequest redeems a promo code into a wallet. Either PromoCodeID or
// Code identifies the promo.
type RedeemRequest struct {
	PromoCodeID  uuid.UUID
	Code         string
	AdvertiserID uuid.UUID
	WalletID     uuid.UUID
	Actor        string
}

// RefundRequest credits money back to a wallet for a campaign.
type RefundRequest struct {
	WalletID       uuid.UUID
	AdvertiserID   uuid.UUID
	CampaignID     uuid.UUID
	Amount         int64
	Reason         string
	Actor          string
	IdempotencyKey string
}

// DisputeResolution settles a billing dispute with an administrative
// movement. A positive Amount credits the advertiser, a negative one debits.
type DisputeResolution struct {
	WalletID       uuid.UUID
	AdvertiserID   uuid.UUID
	Amount         int64
	Reason         string
	Actor          string
	IdempotencyKey string
}

// NewCampaign is the input for CampaignUseCase.CreateCampaign.
type NewCampaign struct {
	AdvertiserID uuid.UUID
	Name         string
	Objective    domain.Objective
	BudgetType   domain.BudgetType
	BudgetAmount int64
	StartDate    *time.Time
	EndDate      *time.Time
}

// NewAdGroup is the input for CampaignUseCase.CreateAdGroup.
type NewAdGroup struct {
	CampaignID              uuid.UUID
	Name                    string
	BidAmount               int64
	BillingModel            domain.BillingModel
	Targeting               domain.Targeting
	FrequencyCapImpressions int
	FrequencyCapPeriodHours int
	Placements              []string
}

// NewAd is the input for CampaignUseCase.CreateAd.
type NewAd struct {
	AdGroupID uuid.UUID
	Creative  domain.Creative
}

// StatsResp contains aggregated event counts and cost for campaigns. Cost
// sums the cost of those events in integer currency units.
type StatsResp struct {
	Impressions int64 `json:"impressions"`
	Clicks      int64 `json:"clicks"`
	Engagements int64 `json:"engagements"`
	Conversions int64 `json:"conversions"`
	Cost        int64 `json:"cost"`
}

type StatsReq struct {
	From       time.Time
	To         time.Time
	CampaignID *uuid.UUID
}
