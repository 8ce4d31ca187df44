package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
)

func TestBuildCampaign(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	advID, _ := e.store.addAdvertiser(1000)

	c, err := e.campaigns.CreateCampaign(ctx, port.NewCampaign{
		AdvertiserID: advID, Name: " Spring launch ", Objective: domain.ObjectiveTraffic,
		BudgetType: domain.BudgetDaily, BudgetAmount: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignDraft, c.Status)
	assert.Equal(t, "Spring launch", c.Name)

	g, err := e.campaigns.CreateAdGroup(ctx, port.NewAdGroup{
		CampaignID: c.ID, Name: "za", BidAmount: 40, BillingModel: domain.BillingCPC,
		Targeting: domain.Targeting{Countries: []string{"ZA"}}, Placements: []string{"feed"},
	})
	require.NoError(t, err)
	assert.Equal(t, c.ID, g.CampaignID)

	ad, err := e.campaigns.CreateAd(ctx, port.NewAd{AdGroupID: g.ID, Creative: domain.Creative{
		Headline: "Hello", DestinationURL: "https://example.com/landing",
	}})
	require.NoError(t, err)
	assert.Equal(t, domain.AdDraft, ad.Status)
	assert.Equal(t, c.ID, ad.CampaignID)

	got, err := e.campaigns.GetAd(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Creative.Headline)

	ads, err := e.campaigns.ListAds(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, ads, 1)

	_, err = e.campaigns.ListAds(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateCampaignRules(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	advID, walletID := e.store.addAdvertiser(1000)
	valid := port.NewCampaign{AdvertiserID: advID, Name: "n", Objective: domain.ObjectiveTraffic, BudgetType: domain.BudgetLifetime, BudgetAmount: 100}
	start := time.Now()
	before := start.Add(-time.Hour)

	tests := []struct {
		name string
		edit func(*port.NewCampaign)
		want error
	}{
		{"zero budget", func(n *port.NewCampaign) { n.BudgetAmount = 0 }, domain.ErrInvalidInput},
		{"unknown objective", func(n *port.NewCampaign) { n.Objective = "FAME" }, domain.ErrInvalidInput},
		{"boost needs lifetime", func(n *port.NewCampaign) {
			n.Objective, n.BudgetType = domain.ObjectiveBoost, domain.BudgetDaily
		}, domain.ErrInvalidInput},
		{"end before start", func(n *port.NewCampaign) { n.StartDate, n.EndDate = &start, &before }, domain.ErrInvalidInput},
		{"unknown advertiser", func(n *port.NewCampaign) { n.AdvertiserID = uuid.New() }, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)
			_, err := e.campaigns.CreateCampaign(ctx, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := e.wallet.Freeze(ctx, walletID, "fraud review", "admin")
	require.NoError(t, err)
	_, err = e.campaigns.CreateCampaign(ctx, valid)
	assert.ErrorIs(t, err, domain.ErrWalletFrozen)

	e.store.mu.Lock()
	adv := e.store.advertisers[advID]
	adv.Status = domain.AdvertiserSuspended
	e.store.advertisers[advID] = adv
	e.store.mu.Unlock()
	_, err = e.campaigns.CreateCampaign(ctx, valid)
	assert.ErrorIs(t, err, domain.ErrAdvertiserSuspended)
}

func TestCreateAdGroupRules(t *testing.T) {
	e := newEngine()
	f := e.fixture(1000, domain.Campaign{Status: domain.CampaignDraft, BudgetAmount: 100}, domain.AdGroup{}, domain.AdDraft)
	ctx := context.Background()

	_, err := e.campaigns.CreateAdGroup(ctx, port.NewAdGroup{CampaignID: f.campaign.ID, Name: "g", BidAmount: -5, BillingModel: domain.BillingCPM})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.campaigns.CreateAdGroup(ctx, port.NewAdGroup{CampaignID: f.campaign.ID, Name: "g", BidAmount: 5, BillingModel: domain.BillingCPM,
		Targeting: domain.Targeting{Countries: []string{" "}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.lifecycle.ArchiveCampaign(ctx, port.Command{ID: f.campaign.ID})
	require.NoError(t, err)
	_, err = e.campaigns.CreateAdGroup(ctx, port.NewAdGroup{CampaignID: f.campaign.ID, Name: "g", BidAmount: 5, BillingModel: domain.BillingCPM})
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

// TestCreateAdGroupCapWindow refuses caps the impression counter cannot
// look back far enough to enforce.
func TestCreateAdGroupCapWindow(t *testing.T) {
	e := newEngine()
	f := e.fixture(1000, domain.Campaign{Status: domain.CampaignDraft, BudgetAmount: 100}, domain.AdGroup{}, domain.AdDraft)
	ctx := context.Background()
	group := func(capImpressions, periodHours int) port.NewAdGroup {
		return port.NewAdGroup{CampaignID: f.campaign.ID, Name: "g", BidAmount: 5, BillingModel: domain.BillingCPM,
			FrequencyCapImpressions: capImpressions, FrequencyCapPeriodHours: periodHours}
	}

	_, err := e.campaigns.CreateAdGroup(ctx, group(3, 24*30))
	require.NoError(t, err)

	e.campaigns.LimitCapWindow(7 * 24 * time.Hour)
	_, err = e.campaigns.CreateAdGroup(ctx, group(3, 24*30))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "frequency_cap_period_hours", verr.Field)

	_, err = e.campaigns.CreateAdGroup(ctx, group(3, 24*7))
	assert.NoError(t, err)
	_, err = e.campaigns.CreateAdGroup(ctx, group(3, 0))
	assert.NoError(t, err)
	_, err = e.campaigns.CreateAdGroup(ctx, group(0, 24*30))
	assert.NoError(t, err)
}

func TestCreateAdRejectsBadURL(t *testing.T) {
	e := newEngine()
	f := e.fixture(1000, domain.Campaign{Status: domain.CampaignDraft, BudgetAmount: 100}, domain.AdGroup{}, domain.AdDraft)

	_, err := e.campaigns.CreateAd(context.Background(), port.NewAd{AdGroupID: f.group.ID, Creative: domain.Creative{
		Headline: "h", DestinationURL: "javascript:alert(1)",
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
