package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"social-ads/internal/core/domain"
)

// Repositories return domain.ErrNotFound (possibly wrapped) for missing rows.
// Implementations must be concurrency-safe.

// AdCandidate is one servable ad with everything the auction needs.
type AdCandidate struct {
	Ad          domain.Ad
	AdGroup     domain.AdGroup
	Campaign    domain.Campaign
	Performance domain.AdPerformance
}

// CandidateRepository is the auction's read path.
type CandidateRepository interface {
	// EligibleCandidates returns ads of active campaigns that may fill the
	// placement, with performance aggregated from statsSince onwards.
	EligibleCandidates(ctx context.Context, placement string, statsSince time.Time) ([]AdCandidate, error)
}

// WalletTx is the unit of work handed out by WalletRepository.InTx. The
// wallet row is locked for the lifetime of the transaction.
type WalletTx interface {
	// Wallet returns the locked wallet as last written in this transaction.
	Wallet() domain.WalletAccount
	UpdateWallet(ctx context.Context, w domain.WalletAccount) error
	// FindTransaction looks up a transaction of this wallet by idempotency
	// key. It returns nil when none exists.
	FindTransaction(ctx context.Context, key string) (*domain.WalletTransaction, error)
	InsertTransaction(ctx context.Context, t domain.WalletTransaction) error
	// GetTransaction reads a transaction of this wallet as stored in this
	// transaction.
	GetTransaction(ctx context.Context, id uuid.UUID) (domain.WalletTransaction, error)

	LockPromo(ctx context.Context, promoID uuid.UUID) (domain.PromoCode, error)
	HasRedemption(ctx context.Context, promoID, advertiserID uuid.UUID) (bool, error)
	// InsertRedemption returns domain.ErrAlreadyRedeemed when the
	// (promo, advertiser) pair already exists.
	InsertRedemption(ctx context.Context, r domain.PromoRedemption) error

	LockCampaign(ctx context.Context, campaignID uuid.UUID) (domain.Campaign, error)
	UpdateCampaignSpend(ctx context.Context, c domain.Campaign) error
	// AppendEvent returns domain.ErrDuplicateEvent for a known event id.
	AppendEvent(ctx context.Context, e domain.AdEvent) error

	// Increment atomically adds delta to the counter of the given entity and
	// returns the new value.
	Increment(ctx context.Context, c domain.Counter, id uuid.UUID, delta int64) (int64, error)
}

// WalletRepository persists wallets, their transactions and promo
// redemptions.
type WalletRepository interface {
	// InTx locks the wallet and runs fn in one transaction. The transaction
	// commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, walletID uuid.UUID, fn func(ctx context.Context, tx WalletTx) error) error
	GetWallet(ctx context.Context, walletID uuid.UUID) (*domain.WalletAccount, error)
	GetWalletByAdvertiser(ctx context.Context, advertiserID uuid.UUID) (*domain.WalletAccount, error)
	ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.WalletTransaction, error)
	// SumCompleted returns the sum of signed amounts of completed
	// transactions.
	SumCompleted(ctx context.Context, walletID uuid.UUID) (int64, error)
	GetPromoByCode(ctx context.Context, code string) (*domain.PromoCode, error)
}

// CampaignRepository persists campaigns and their status history.
type CampaignRepository interface {
	GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	CreateCampaign(ctx context.Context, c domain.Campaign) error
	// UpdateCampaignStatus moves the campaign to `to` only if it is still in
	// `from`, writing the audit entry in the same transaction. It reports
	// false when the status had changed.
	UpdateCampaignStatus(ctx context.Context, id uuid.UUID, from, to domain.CampaignStatus, audit domain.AuditEntry) (bool, error)
	// ListOrphanedCampaigns returns DRAFT or PENDING_REVIEW campaigns that own
	// at least one APPROVED or ACTIVE ad.
	ListOrphanedCampaigns(ctx context.Context, limit int) ([]domain.Campaign, error)
	GetAdvertiser(ctx context.Context, id uuid.UUID) (*domain.Advertiser, error)
}

// AdRepository persists ad groups and ads.
type AdRepository interface {
	GetAdGroup(ctx context.Context, id uuid.UUID) (*domain.AdGroup, error)
	CreateAdGroup(ctx context.Context, g domain.AdGroup) error
	GetAd(ctx context.Context, id uuid.UUID) (*domain.Ad, error)
	CreateAd(ctx context.Context, ad domain.Ad) error
	ListCampaignAds(ctx context.Context, campaignID uuid.UUID) ([]domain.Ad, error)
	// UpdateAdStatus writes ad's status, rejection reason and reopened flag
	// only if the stored status is still `from`, together with the audit
	// entry. It reports false when the status had changed.
	UpdateAdStatus(ctx context.Context, ad domain.Ad, from domain.AdStatus, audit domain.AuditEntry) (bool, error)
}

// EventRepository is the append-only event store outside the wallet path.
type EventRepository interface {
	// AppendEvent returns domain.ErrDuplicateEvent for a known event id.
	AppendEvent(ctx context.Context, e domain.AdEvent) error
	GetEvent(ctx context.Context, id uuid.UUID) (*domain.AdEvent, error)
	Increment(ctx context.Context, c domain.Counter, id uuid.UUID, delta int64) (int64, error)
	GetStats(ctx context.Context, req StatsReq) (*StatsResp, error)
}

// ImpressionCounter backs the frequency capper.
type ImpressionCounter interface {
	// CountImpressions counts IMPRESSION events for the ad group and user
	// created at or after since.
	CountImpressions(ctx context.Context, adGroupID uuid.UUID, userID string, since time.Time) (int64, error)
	// RecordImpression makes a stored impression visible to the counter.
	// Counters that read the event table directly may ignore it.
	RecordImpression(ctx context.Context, e domain.AdEvent) error
}

// SettingsSource loads runtime overrides on top of a base snapshot.
type SettingsSource interface {
	LoadSettings(ctx context.Context, base domain.Settings) (domain.Settings, error)
}

// SettingsProvider hands out the current settings snapshot.
type SettingsProvider interface {
	Snapshot() domain.Settings
}
