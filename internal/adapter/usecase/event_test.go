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

func TestClickChargedUnderCPC(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	f := e.fixture(1000, domain.Campaign{Status: domain.CampaignActive, BudgetAmount: 500},
		domain.AdGroup{BillingModel: domain.BillingCPC, BidAmount: 50}, domain.AdActive)

	imp, err := e.events.RecordEvent(ctx, domain.AdEvent{AdID: f.ad.ID, UserID: "u1", EventType: domain.EventImpression})
	require.NoError(t, err)
	assert.False(t, imp.Billed)
	assert.Zero(t, imp.Event.CostAmount)

	click, err := e.events.RecordEvent(ctx, domain.AdEvent{AdID: f.ad.ID, UserID: "u1", EventType: domain.EventClick, CostAmount: 9999})
	require.NoError(t, err)
	assert.True(t, click.Billed)
	assert.Equal(t, int64(50), click.Event.CostAmount)
	require.NotNil(t, click.Transaction)
	assert.Equal(t, domain.TxAdSpend, click.Transaction.Type)
	assert.Equal(t, int64(-50), click.Transaction.Amount)

	assert.Equal(t, int64(950), e.store.wallet(t, f.walletID).Balance)
	assert.Equal(t, int64(50), e.store.campaign(t, f.campaign.ID).BudgetSpent)
	assert.Equal(t, int64(1), e.store.counter(domain.CounterAdClicks, f.ad.ID))
	assert.Equal(t, int64(1), e.store.counter(domain.CounterAdImpressions, f.ad.ID))
}

func TestDuplicateEventNotChargedTwice(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	f := e.fixture(1000, domain.Campaign{Status: domain.CampaignActive, BudgetAmount: 500},
		domain.AdGroup{BillingModel: domain.BillingCPC, BidAmount: 50}, domain.AdActive)
	ev := domain.AdEvent{ID: uuid.New(), AdID: f.ad.ID, UserID: "u1", EventType: domain.EventClick}

	first, err := e.events.RecordEvent(ctx, ev)
	require.NoError(t, err)
	again, err := e.events.RecordEvent(ctx, ev)
	require.NoError(t, err)

	assert.False(t, first.Duplicate)
	assert.True(t, again.Duplicate)
	assert.True(t, again.Billed)
	assert.Equal(t, int64(950), e.store.wallet(t, f.walletID).Balance)
	assert.Equal(t, int64(1), e.store.counter(domain.CounterAdClicks, f.ad.ID))
}

func TestEventCost(t *testing.T) {
	tests := []struct {
		name     string
		model    domain.BillingModel
		bid      int64
		event    domain.EventType
		clearing int64
		want     int64
	}{
		{"cpm impression rounds up", domain.BillingCPM, 1500, domain.EventImpression, 0, 2},
		{"cpm click is free", domain.BillingCPM, 1500, domain.EventClick, 0, 0},
		{"cpc uses clearing price", domain.BillingCPC, 80, domain.EventClick, 55, 55},
		{"clearing price above bid is capped", domain.BillingCPC, 80, domain.EventClick, 120, 80},
		{"cpe engagement", domain.BillingCPE, 30, domain.EventEngagement, 0, 30},
		{"cpa conversion", domain.BillingCPA, 400, domain.EventConversion, 0, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine()
			f := e.fixture(10000, domain.Campaign{Status: domain.CampaignActive, BudgetAmount: 5000},
				domain.AdGroup{BillingModel: tt.model, BidAmount: tt.bid}, domain.AdActive)

			r, err := e.events.RecordEvent(context.Background(), domain.AdEvent{AdID: f.ad.ID, UserID: "u", EventType: tt.event, ClearingPrice: tt.clearing})
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Event.CostAmount)
			assert.Equal(t, 10000-tt.want, e.store.wallet(t, f.walletID).Balance)
		})
	}
}

// TestLifetimeBudgetExhausted charges up to the budget, completes the
// campaign and stores later events unbilled.
func TestLifetimeBudgetExhausted(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	f := e.fixture(1000, domain.Campaign{Status: domain.CampaignActive, BudgetType: domain.BudgetLifetime, BudgetAmount: 100},
		domain.AdGroup{BillingModel: domain.BillingCPC, BidAmount: 60}, domain.AdActive)
	click := domain.AdEvent{AdID: f.ad.ID, UserID: "u", EventType: domain.EventClick}

	r, err := e.events.RecordEvent(ctx, click)
	require.NoError(t, err)
	assert.Equal(t, int64(60), r.Event.CostAmount)

	r, err = e.events.RecordEvent(ctx, click)
	require.NoError(t, err)
	assert.Equal(t, int64(40), r.Event.CostAmount)
	assert.Equal(t, domain.CampaignCompleted, e.store.campaign(t, f.campaign.ID).Status)

	r, err = e.events.RecordEvent(ctx, click)
	require.NoError(t, err)
	assert.False(t, r.Billed)
	assert.Equal(t, UnbilledCampaignClosed, r.Reason)

	c := e.store.campaign(t, f.campaign.ID)
	assert.Equal(t, c.BudgetAmount, c.BudgetSpent)
	assert.Equal(t, int64(900), e.store.wallet(t, f.walletID).Balance)
}

// TestLateClicksOnCompletedBoost completes a prepaid campaign, which
// returns its whole budget, and then receives clicks for it. They are
// counted but neither drawn from the budget nor the wallet.
func TestLateClicksOnCompletedBoost(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	f := e.fixture(5000, domain.Campaign{Status: domain.CampaignDraft, Objective: domain.ObjectiveBoost, BudgetAmount: 2000},
		domain.AdGroup{BillingModel: domain.BillingCPC, BidAmount: 500}, domain.AdApproved)

	_, err := e.lifecycle.SubmitCampaign(ctx, port.Command{ID: f.campaign.ID})
	require.NoError(t, err)
	_, err = e.lifecycle.ApproveCampaign(ctx, port.Command{ID: f.campaign.ID})
	require.NoError(t, err)
	_, err = e.lifecycle.CompleteCampaign(ctx, port.Command{ID: f.campaign.ID})
	require.NoError(t, err)
	require.Equal(t, int64(5000), e.store.wallet(t, f.walletID).Balance)

	for range 3 {
		r, err := e.events.RecordEvent(ctx, domain.AdEvent{AdID: f.ad.ID, UserID: "u", EventType: domain.EventClick})
		require.NoError(t, err)
		assert.False(t, r.Billed)
		assert.Equal(t, UnbilledCampaignClosed, r.Reason)
		assert.Zero(t, r.Event.CostAmount)
		assert.Nil(t, r.Transaction)
	}

	c := e.store.campaign(t, f.campaign.ID)
	assert.Equal(t, domain.CampaignCompleted, c.Status)
	assert.Zero(t, c.BudgetSpent)
	assert.Equal(t, int64(5000), e.store.wallet(t, f.walletID).Balance)
	assert.Equal(t, int64(3), e.store.counter(domain.CounterAdClicks, f.ad.ID))
	require.NoError(t, e.wallet.Verify(ctx, f.walletID))
}

func TestMeteringByCampaignStatus(t *testing.T) {
	tests := []struct {
		status  domain.CampaignStatus
		billed  bool
		balance int64
	}{
		{domain.CampaignActive, true, 950},
		{domain.CampaignPaused, true, 950},
		{domain.CampaignCompleted, false, 1000},
		{domain.CampaignArchived, false, 1000},
		{domain.CampaignRejected, false, 1000},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			e := newEngine()
			f := e.fixture(1000, domain.Campaign{Status: tt.status, BudgetAmount: 500},
				domain.AdGroup{BillingModel: domain.BillingCPC, BidAmount: 50}, domain.AdActive)

			r, err := e.events.RecordEvent(context.Background(), domain.AdEvent{AdID: f.ad.ID, UserID: "u", EventType: domain.EventClick})
			require.NoError(t, err)
			assert.Equal(t, tt.billed, r.Billed)
			if !tt.billed {
				assert.Equal(t, UnbilledCampaignClosed, r.Reason)
			}
			assert.Equal(t, tt.balance, e.store.wallet(t, f.walletID).Balance)
			assert.Equal(t, tt.status, e.store.campaign(t, f.campaign.ID).Status)
		})
	}
}

func TestInsufficientFundsPausesCampaign(t *testing.T) {
	e := newEngine()
	f := e.fixture(30, domain.Campaign{Status: domain.CampaignActive, BudgetAmount: 500},
		domain.AdGroup{BillingModel: domain.BillingCPC, BidAmount: 50}, domain.AdActive)

	r, err := e.events.RecordEvent(context.Background(), domain.AdEvent{AdID: f.ad.ID, UserID: "u", EventType: domain.EventClick})
	require.NoError(t, err)
	assert.False(t, r.Billed)
	assert.Equal(t, UnbilledNoFunds, r.Reason)
	assert.Equal(t, domain.CampaignPaused, e.store.campaign(t, f.campaign.ID).Status)
	assert.Equal(t, int64(30), e.store.wallet(t, f.walletID).Balance)
	assert.Zero(t, e.store.campaign(t, f.campaign.ID).BudgetSpent)
}

func TestBoostSpendDrawsBudgetOnly(t *testing.T) {
	e := newEngine()
	f := e.fixture(0, domain.Campaign{Status: domain.CampaignActive, Objective: domain.ObjectiveBoost, BudgetAmount: 1000},
		domain.AdGroup{BillingModel: domain.BillingCPC, BidAmount: 70}, domain.AdActive)

	r, err := e.events.RecordEvent(context.Background(), domain.AdEvent{AdID: f.ad.ID, UserID: "u", EventType: domain.EventClick})
	require.NoError(t, err)
	assert.True(t, r.Billed)
	assert.Nil(t, r.Transaction)
	assert.Equal(t, int64(70), e.store.campaign(t, f.campaign.ID).BudgetSpent)
	assert.Zero(t, e.store.wallet(t, f.walletID).Balance)
}

func TestDailyBudgetRollsOver(t *testing.T) {
	e := newEngine()
	yesterday := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -1)
	f := e.fixture(1000, domain.Campaign{
		Status: domain.CampaignActive, BudgetType: domain.BudgetDaily,
		BudgetAmount: 100, BudgetSpent: 100, SpendPeriod: yesterday,
	}, domain.AdGroup{BillingModel: domain.BillingCPC, BidAmount: 25}, domain.AdActive)

	r, err := e.events.RecordEvent(context.Background(), domain.AdEvent{AdID: f.ad.ID, UserID: "u", EventType: domain.EventClick})
	require.NoError(t, err)
	assert.True(t, r.Billed)
	c := e.store.campaign(t, f.campaign.ID)
	assert.Equal(t, int64(25), c.BudgetSpent)
	assert.True(t, c.SpendPeriod.After(yesterday))
}

func TestRecordEventValidation(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	_, err := e.events.RecordEvent(ctx, domain.AdEvent{AdID: uuid.New(), EventType: "VIEW"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.events.RecordEvent(ctx, domain.AdEvent{EventType: domain.EventClick})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.events.RecordEvent(ctx, domain.AdEvent{AdID: uuid.New(), EventType: domain.EventClick})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetStats(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	f := e.fixture(1000, domain.Campaign{Status: domain.CampaignActive, BudgetAmount: 500},
		domain.AdGroup{BillingModel: domain.BillingCPC, BidAmount: 10}, domain.AdActive)
	for _, typ := range []domain.EventType{domain.EventImpression, domain.EventImpression, domain.EventClick} {
		_, err := e.events.RecordEvent(ctx, domain.AdEvent{AdID: f.ad.ID, UserID: "u", EventType: typ})
		require.NoError(t, err)
	}

	from := time.Now().Add(-time.Hour)
	stats, err := e.events.GetStats(ctx, port.StatsReq{From: from, To: time.Now().Add(time.Hour), CampaignID: &f.campaign.ID})
	require.NoError(t, err)
	assert.Equal(t, &port.StatsResp{Impressions: 2, Clicks: 1, Cost: 10}, stats)

	_, err = e.events.GetStats(ctx, port.StatsReq{From: from, To: from.Add(-time.Minute)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
