package usecase

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
)

// CampaignUseCase validates and stores new campaigns, ad groups and ads.
// Everything it creates starts in DRAFT; status changes belong to
// LifecycleUseCase.
type CampaignUseCase struct {
	campaigns port.CampaignRepository
	ads       port.AdRepository
	wallets   port.WalletRepository
	logger    *slog.Logger
	// maxCapWindow bounds frequency cap periods; zero means unbounded.
	maxCapWindow time.Duration

	now func() time.Time
}

func NewCampaignUseCase(campaigns port.CampaignRepository, ads port.AdRepository, wallets port.WalletRepository, logger *slog.Logger) *CampaignUseCase {
	return &CampaignUseCase{campaigns: campaigns, ads: ads, wallets: wallets, logger: logger, now: time.Now}
}

// LimitCapWindow makes CreateAdGroup refuse frequency caps whose period
// exceeds d, the window the impression counter keeps.
func (u *CampaignUseCase) LimitCapWindow(d time.Duration) {
	u.maxCapWindow = d
}

// CreateCampaign stores a DRAFT campaign for an active advertiser whose
// wallet is not frozen.
func (u *CampaignUseCase) CreateCampaign(ctx context.Context, in port.NewCampaign) (domain.Campaign, error) {
	if err := validateCampaign(in); err != nil {
		return domain.Campaign{}, err
	}
	adv, err := u.campaigns.GetAdvertiser(ctx, in.AdvertiserID)
	if err != nil {
		return domain.Campaign{}, err
	}
	if adv.Status == domain.AdvertiserSuspended {
		return domain.Campaign{}, domain.ErrAdvertiserSuspended
	}
	w, err := u.wallets.GetWalletByAdvertiser(ctx, in.AdvertiserID)
	if err != nil {
		return domain.Campaign{}, err
	}
	if w.IsFrozen {
		return domain.Campaign{}, domain.ErrWalletFrozen
	}

	now := u.now().UTC()
	c := domain.Campaign{
		ID:           uuid.New(),
		AdvertiserID: in.AdvertiserID,
		Name:         strings.TrimSpace(in.Name),
		Objective:    in.Objective,
		BudgetType:   in.BudgetType,
		BudgetAmount: in.BudgetAmount,
		SpendPeriod:  now.Truncate(24 * time.Hour),
		Status:       domain.CampaignDraft,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err = u.campaigns.CreateCampaign(ctx, c); err != nil {
		return domain.Campaign{}, err
	}
	u.logger.Info("campaign created",
		slog.String("campaign_id", c.ID.String()),
		slog.String("advertiser_id", c.AdvertiserID.String()),
		slog.String("objective", string(c.Objective)))
	return c, nil
}

// CreateAdGroup adds an ad group to a campaign that is not closed yet.
func (u *CampaignUseCase) CreateAdGroup(ctx context.Context, in port.NewAdGroup) (domain.AdGroup, error) {
	if err := validateAdGroup(in); err != nil {
		return domain.AdGroup{}, err
	}
	if u.maxCapWindow > 0 && in.FrequencyCapImpressions > 0 && capWindow(in.FrequencyCapPeriodHours) > u.maxCapWindow {
		return domain.AdGroup{}, &domain.ValidationError{
			Field:  "frequency_cap_period_hours",
			Reason: "must not exceed " + strconv.Itoa(int(u.maxCapWindow/time.Hour)) + " hours",
		}
	}
	c, err := u.campaigns.GetCampaign(ctx, in.CampaignID)
	if err != nil {
		return domain.AdGroup{}, err
	}
	if closed(c.Status) {
		return domain.AdGroup{}, &domain.TransitionError{Entity: domain.EntityCampaign, From: string(c.Status), To: "new ad group"}
	}
	now := u.now().UTC()
	g := domain.AdGroup{
		ID:                      uuid.New(),
		CampaignID:              c.ID,
		Name:                    strings.TrimSpace(in.Name),
		BidAmount:               in.BidAmount,
		BillingModel:            in.BillingModel,
		Targeting:               in.Targeting,
		FrequencyCapImpressions: in.FrequencyCapImpressions,
		FrequencyCapPeriodHours: in.FrequencyCapPeriodHours,
		Placements:              in.Placements,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err = u.ads.CreateAdGroup(ctx, g); err != nil {
		return domain.AdGroup{}, err
	}
	return g, nil
}

// CreateAd adds a DRAFT ad to an ad group.
func (u *CampaignUseCase) CreateAd(ctx context.Context, in port.NewAd) (domain.Ad, error) {
	if err := validateCreative(in.Creative); err != nil {
		return domain.Ad{}, err
	}
	g, err := u.ads.GetAdGroup(ctx, in.AdGroupID)
	if err != nil {
		return domain.Ad{}, err
	}
	c, err := u.campaigns.GetCampaign(ctx, g.CampaignID)
	if err != nil {
		return domain.Ad{}, err
	}
	if closed(c.Status) {
		return domain.Ad{}, &domain.TransitionError{Entity: domain.EntityCampaign, From: string(c.Status), To: "new ad"}
	}
	now := u.now().UTC()
	ad := domain.Ad{
		ID:         uuid.New(),
		AdGroupID:  g.ID,
		CampaignID: g.CampaignID,
		Status:     domain.AdDraft,
		Creative:   in.Creative,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err = u.ads.CreateAd(ctx, ad); err != nil {
		return domain.Ad{}, err
	}
	return ad, nil
}

func closed(s domain.CampaignStatus) bool {
	return s == domain.CampaignRejected || s == domain.CampaignCompleted || s == domain.CampaignArchived
}

func validateCampaign(in port.NewCampaign) error {
	switch {
	case in.AdvertiserID == uuid.Nil:
		return &domain.ValidationError{Field: "advertiser_id", Reason: "required"}
	case strings.TrimSpace(in.Name) == "":
		return &domain.ValidationError{Field: "name", Reason: "required"}
	case !in.Objective.Valid():
		return &domain.ValidationError{Field: "objective", Reason: "unknown objective " + string(in.Objective)}
	case !in.BudgetType.Valid():
		return &domain.ValidationError{Field: "budget_type", Reason: "unknown budget type " + string(in.BudgetType)}
	case in.BudgetAmount <= 0:
		return &domain.ValidationError{Field: "budget_amount", Reason: "must be positive"}
	case in.Objective.ReservesBudget() && in.BudgetType != domain.BudgetLifetime:
		return &domain.ValidationError{Field: "budget_type", Reason: "prepaid campaigns need a LIFETIME budget"}
	case in.StartDate != nil && in.EndDate != nil && !in.EndDate.After(*in.StartDate):
		return &domain.ValidationError{Field: "end_date", Reason: "must be after start_date"}
	}
	return nil
}

func validateAdGroup(in port.NewAdGroup) error {
	switch {
	case in.CampaignID == uuid.Nil:
		return &domain.ValidationError{Field: "campaign_id", Reason: "required"}
	case strings.TrimSpace(in.Name) == "":
		return &domain.ValidationError{Field: "name", Reason: "required"}
	case in.BidAmount <= 0:
		return &domain.ValidationError{Field: "bid_amount", Reason: "must be positive"}
	case !in.BillingModel.Valid():
		return &domain.ValidationError{Field: "billing_model", Reason: "unknown billing model " + string(in.BillingModel)}
	case in.FrequencyCapImpressions < 0:
		return &domain.ValidationError{Field: "frequency_cap_impressions", Reason: "must not be negative"}
	case in.FrequencyCapPeriodHours < 0:
		return &domain.ValidationError{Field: "frequency_cap_period_hours", Reason: "must not be negative"}
	}
	for _, p := range in.Placements {
		if strings.TrimSpace(p) == "" {
			return &domain.ValidationError{Field: "placements", Reason: "must not contain blanks"}
		}
	}
	return in.Targeting.Validate()
}

func validateCreative(c domain.Creative) error {
	if strings.TrimSpace(c.Headline) == "" {
		return &domain.ValidationError{Field: "creative.headline", Reason: "required"}
	}
	if c.DestinationURL == "" {
		return &domain.ValidationError{Field: "creative.destination_url", Reason: "required"}
	}
	for field, raw := range map[string]string{"destination_url": c.DestinationURL, "media_url": c.MediaURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &domain.ValidationError{Field: "creative." + field, Reason: "must be an absolute http(s) URL"}
		}
	}
	return nil
}

func (u *CampaignUseCase) GetCampaign(ctx context.Context, id uuid.UUID) (domain.Campaign, error) {
	c, err := u.campaigns.GetCampaign(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	return *c, nil
}

func (u *CampaignUseCase) GetAd(ctx context.Context, id uuid.UUID) (domain.Ad, error) {
	ad, err := u.ads.GetAd(ctx, id)
	if err != nil {
		return domain.Ad{}, err
	}
	return *ad, nil
}

// ListAds returns every ad of the campaign regardless of status.
func (u *CampaignUseCase) ListAds(ctx context.Context, campaignID uuid.UUID) ([]domain.Ad, error) {
	if _, err := u.campaigns.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	return u.ads.ListCampaignAds(ctx, campaignID)
}
