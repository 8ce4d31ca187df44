package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"social-ads/internal/core/auction"
	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
	"social-ads/internal/core/quality"
	"social-ads/internal/core/targeting"
	"social-ads/internal/metrics"
)

// Reasons reported with an empty slot.
const (
	ReasonNoCandidates = "no_candidates"
	ReasonNoMatch      = "no_match"
	ReasonTimeout      = "timeout"
)

// AuctionUseCase picks the ad that fills a placement. It only reads: the
// charge happens later when the delivered event is recorded.
type AuctionUseCase struct {
	repo     port.CandidateRepository
	capper   *FrequencyCapper
	settings port.SettingsProvider
	logger   *slog.Logger

	now func() time.Time
}

// NewAuctionUseCase creates the auction over the given candidate source.
func NewAuctionUseCase(repo port.CandidateRepository, capper *FrequencyCapper, settings port.SettingsProvider, logger *slog.Logger) *AuctionUseCase {
	return &AuctionUseCase{
		repo:     repo,
		capper:   capper,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// SelectWinner runs one auction for the placement. The whole call is bounded
// by the configured auction timeout; running out of time yields an empty
// slot rather than an error.
func (u *AuctionUseCase) SelectWinner(ctx context.Context, req domain.PlacementRequest) (domain.AuctionResult, error) {
	started := time.Now()
	cfg := u.settings.Snapshot()
	if cfg.AuctionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.AuctionTimeout)
		defer cancel()
	}

	res, err := u.selectWinner(ctx, req, cfg)
	if err != nil && timedOut(ctx, err) {
		u.logger.Debug("auction timed out",
			slog.String("placement", req.Placement),
			slog.String("error", err.Error()))
		res, err = domain.NoEligibleAd(ReasonTimeout), nil
	}
	metrics.AuctionDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.AuctionsTotal.WithLabelValues("error", "").Inc()
		return domain.AuctionResult{}, err
	}
	metrics.AuctionsTotal.WithLabelValues(string(res.Outcome), res.Reason).Inc()
	return res, nil
}

func (u *AuctionUseCase) selectWinner(ctx context.Context, req domain.PlacementRequest, cfg domain.Settings) (domain.AuctionResult, error) {
	now := u.now()
	statsSince := now.AddDate(0, 0, -cfg.QualityWindowDays)
	candidates, err := retryRead(ctx, cfg.CandidateRetries, cfg.RetryBackoff,
		func(ctx context.Context) ([]port.AdCandidate, error) {
			return u.repo.EligibleCandidates(ctx, req.Placement, statsSince)
		})
	if err != nil {
		return domain.AuctionResult{}, fmt.Errorf("load candidates: %w", err)
	}
	if len(candidates) == 0 {
		return domain.NoEligibleAd(ReasonNoCandidates), nil
	}

	// the cap is per ad group, so sibling ads share one lookup
	capped := make(map[uuid.UUID]bool)
	byAd := make(map[uuid.UUID]port.AdCandidate, len(candidates))
	bids := make([]auction.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !eligible(c, req.Placement, now) {
			continue
		}
		match := targeting.Match(c.AdGroup.Targeting, req.Viewer)
		if !match.Matches {
			continue
		}
		blocked, seen := capped[c.AdGroup.ID]
		if !seen {
			allowed, err := u.capper.Allowed(ctx, c.AdGroup.ID, req.Viewer.UserID,
				c.AdGroup.FrequencyCapImpressions, c.AdGroup.FrequencyCapPeriodHours)
			if err != nil {
				return domain.AuctionResult{}, fmt.Errorf("frequency cap: %w", err)
			}
			blocked = !allowed
			capped[c.AdGroup.ID] = blocked
			if blocked {
				metrics.FrequencyCapped.Inc()
			}
		}
		if blocked {
			continue
		}
		bids = append(bids, auction.Candidate{
			AdID:              c.Ad.ID,
			Bid:               c.AdGroup.BidAmount,
			TargetingScore:    match.Score,
			QualityScore:      quality.Score(c.Ad.Creative, c.Performance.CTR(), c.Performance.EngagementRate()),
			CampaignCreatedAt: c.Campaign.CreatedAt,
		})
		byAd[c.Ad.ID] = c
	}

	out, ok := auction.Select(bids, cfg.SecondPrice)
	if !ok {
		return domain.NoEligibleAd(ReasonNoMatch), nil
	}
	w := byAd[out.Winner.AdID]
	return domain.AuctionResult{
		Outcome:        domain.OutcomeWon,
		AuctionID:      uuid.New(),
		AdID:           w.Ad.ID,
		AdGroupID:      w.AdGroup.ID,
		CampaignID:     w.Campaign.ID,
		Creative:       w.Ad.Creative,
		BillingModel:   w.AdGroup.BillingModel,
		WinningBid:     out.Price,
		EffectiveBid:   out.Winner.EffectiveBid,
		QualityScore:   out.Winner.QualityScore,
		TargetingScore: out.Winner.TargetingScore,
		AdRank:         out.Winner.AdRank,
	}, nil
}

// eligible re-checks what the candidate query already filters on, so a
// stale or loose repository can never serve a paused campaign.
func eligible(c port.AdCandidate, placement string, now time.Time) bool {
	campaign := c.Campaign
	campaign.RollSpendPeriod(now)
	return campaign.Status == domain.CampaignActive &&
		c.Ad.Status.Servable() &&
		campaign.Running(now) &&
		campaign.RemainingBudget() > 0 &&
		c.AdGroup.BidAmount > 0 &&
		c.AdGroup.ServesPlacement(placement)
}

func timedOut(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		ctx.Err() != nil
}
