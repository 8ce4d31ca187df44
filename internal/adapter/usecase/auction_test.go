package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
	"social-ads/internal/core/port/mocks"
)

var testCreative = domain.Creative{Headline: "h", Description: "d", DestinationURL: "https://example.com"}

func candidate(bid int64, created time.Time, rules domain.Targeting) port.AdCandidate {
	campaignID := uuid.New()
	groupID := uuid.New()
	return port.AdCandidate{
		Ad: domain.Ad{ID: uuid.New(), AdGroupID: groupID, CampaignID: campaignID, Status: domain.AdActive, Creative: testCreative},
		AdGroup: domain.AdGroup{
			ID: groupID, CampaignID: campaignID, BidAmount: bid, BillingModel: domain.BillingCPC,
			Targeting: rules, FrequencyCapImpressions: 3, FrequencyCapPeriodHours: 24,
		},
		Campaign: domain.Campaign{
			ID: campaignID, Status: domain.CampaignActive, BudgetType: domain.BudgetLifetime,
			BudgetAmount: 10000, CreatedAt: created,
		},
	}
}

func newAuction(t *testing.T, settings domain.Settings) (*AuctionUseCase, *mocks.MockCandidateRepository, *mocks.MockImpressionCounter) {
	repo := mocks.NewMockCandidateRepository(t)
	counter := mocks.NewMockImpressionCounter(t)
	return NewAuctionUseCase(repo, NewFrequencyCapper(counter), StaticSettings(settings), discardLogger()), repo, counter
}

// TestAuctionPicksHighestRank expects the higher bid to win and pay just
// enough to beat the runner-up.
func TestAuctionPicksHighestRank(t *testing.T) {
	svc, repo, counter := newAuction(t, domain.DefaultSettings())
	now := time.Now()
	low := candidate(60, now, domain.Targeting{})
	high := candidate(100, now, domain.Targeting{})

	repo.EXPECT().
		EligibleCandidates(mock.Anything, "feed", mock.AnythingOfType("time.Time")).
		Return([]port.AdCandidate{low, high}, nil)
	counter.EXPECT().
		CountImpressions(mock.Anything, mock.Anything, "u1", mock.Anything).
		Return(0, nil)

	res, err := svc.SelectWinner(context.Background(), domain.PlacementRequest{Viewer: domain.ViewerContext{UserID: "u1"}, Placement: "feed"})
	require.NoError(t, err)
	require.True(t, res.Filled())
	assert.Equal(t, high.Ad.ID, res.AdID)
	assert.Equal(t, high.Campaign.ID, res.CampaignID)
	assert.Equal(t, int64(60), res.WinningBid)
	assert.NotEqual(t, uuid.Nil, res.AuctionID)
}

func TestAuctionFirstPrice(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.SecondPrice = false
	svc, repo, counter := newAuction(t, settings)
	now := time.Now()

	repo.EXPECT().EligibleCandidates(mock.Anything, "feed", mock.Anything).
		Return([]port.AdCandidate{candidate(60, now, domain.Targeting{}), candidate(100, now, domain.Targeting{})}, nil)
	counter.EXPECT().CountImpressions(mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(0, nil)

	res, err := svc.SelectWinner(context.Background(), domain.PlacementRequest{Viewer: domain.ViewerContext{UserID: "u1"}, Placement: "feed"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.WinningBid)
}

func TestAuctionSkipsCappedAndMismatched(t *testing.T) {
	svc, repo, counter := newAuction(t, domain.DefaultSettings())
	now := time.Now()
	capped := candidate(500, now, domain.Targeting{})
	elsewhere := candidate(400, now, domain.Targeting{Countries: []string{"US"}})
	paused := candidate(300, now, domain.Targeting{})
	paused.Campaign.Status = domain.CampaignPaused
	spent := candidate(250, now, domain.Targeting{})
	spent.Campaign.BudgetSpent = spent.Campaign.BudgetAmount
	winner := candidate(50, now, domain.Targeting{Countries: []string{"ZA"}})

	repo.EXPECT().EligibleCandidates(mock.Anything, "feed", mock.Anything).
		Return([]port.AdCandidate{capped, elsewhere, paused, spent, winner}, nil)
	counter.EXPECT().CountImpressions(mock.Anything, capped.AdGroup.ID, "u1", mock.Anything).Return(3, nil)
	counter.EXPECT().CountImpressions(mock.Anything, winner.AdGroup.ID, "u1", mock.Anything).Return(2, nil)

	res, err := svc.SelectWinner(context.Background(), domain.PlacementRequest{
		Viewer:    domain.ViewerContext{UserID: "u1", Country: "ZA"},
		Placement: "feed",
	})
	require.NoError(t, err)
	require.True(t, res.Filled())
	assert.Equal(t, winner.Ad.ID, res.AdID)
	assert.Equal(t, int64(50), res.WinningBid)
}

func TestAuctionNoCandidates(t *testing.T) {
	svc, repo, _ := newAuction(t, domain.DefaultSettings())
	repo.EXPECT().EligibleCandidates(mock.Anything, "story", mock.Anything).Return(nil, nil)

	res, err := svc.SelectWinner(context.Background(), domain.PlacementRequest{Placement: "story"})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoEligibleAd, res.Outcome)
	assert.Equal(t, ReasonNoCandidates, res.Reason)
}

func TestAuctionTimeoutIsEmptySlot(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.AuctionTimeout = 10 * time.Millisecond
	svc, repo, _ := newAuction(t, settings)
	repo.EXPECT().EligibleCandidates(mock.Anything, "feed", mock.Anything).
		RunAndReturn(func(ctx context.Context, _ string, _ time.Time) ([]port.AdCandidate, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	res, err := svc.SelectWinner(context.Background(), domain.PlacementRequest{Placement: "feed"})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoEligibleAd, res.Outcome)
	assert.Equal(t, ReasonTimeout, res.Reason)
}

func TestAuctionRetriesCandidateRead(t *testing.T) {
	svc, repo, counter := newAuction(t, domain.DefaultSettings())
	c := candidate(80, time.Now(), domain.Targeting{})
	repo.EXPECT().EligibleCandidates(mock.Anything, "feed", mock.Anything).Return(nil, errors.New("connection reset")).Once()
	repo.EXPECT().EligibleCandidates(mock.Anything, "feed", mock.Anything).Return([]port.AdCandidate{c}, nil).Once()
	counter.EXPECT().CountImpressions(mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(0, nil)

	res, err := svc.SelectWinner(context.Background(), domain.PlacementRequest{Viewer: domain.ViewerContext{UserID: "u"}, Placement: "feed"})
	require.NoError(t, err)
	assert.Equal(t, c.Ad.ID, res.AdID)
	assert.Equal(t, int64(80), res.WinningBid)
}

func TestAuctionReportsPersistentFailure(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.CandidateRetries = 1
	svc, repo, _ := newAuction(t, settings)
	repo.EXPECT().EligibleCandidates(mock.Anything, "feed", mock.Anything).Return(nil, errors.New("db down")).Times(2)

	_, err := svc.SelectWinner(context.Background(), domain.PlacementRequest{Placement: "feed"})
	require.Error(t, err)
}
