package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
	"social-ads/internal/metrics"
)

// orphanBatch caps one reconciliation sweep.
const orphanBatch = 500

// LifecycleUseCase owns every campaign and ad status change. Each change is
// a conditional update on the status that was read, so two concurrent
// transitions can never both apply.
type LifecycleUseCase struct {
	campaigns port.CampaignRepository
	ads       port.AdRepository
	wallets   port.WalletRepository
	ledger    port.WalletUseCase
	notifier  port.Notifier
	settings  port.SettingsProvider
	logger    *slog.Logger

	now func() time.Time
}

func NewLifecycleUseCase(
	campaigns port.CampaignRepository,
	ads port.AdRepository,
	wallets port.WalletRepository,
	ledger port.WalletUseCase,
	notifier port.Notifier,
	settings port.SettingsProvider,
	logger *slog.Logger,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		campaigns: campaigns,
		ads:       ads,
		wallets:   wallets,
		ledger:    ledger,
		notifier:  notifier,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
	}
}

// SubmitCampaign sends a DRAFT campaign to review. Prepaid campaigns take
// their budget from the wallet here. If the status write fails after the
// debit, the draft keeps the budget on hold: a retry reuses the debit and
// archiving the draft returns it.
func (u *LifecycleUseCase) SubmitCampaign(ctx context.Context, cmd port.Command) (domain.Campaign, error) {
	return u.transitionCampaign(ctx, cmd, domain.CampaignPendingReview, nil, func(ctx context.Context, c domain.Campaign) error {
		if c.Objective.ReservesBudget() {
			return u.reserve(ctx, c, cmd.Actor)
		}
		return nil
	})
}

// ApproveCampaign activates a campaign in review. It needs at least one
// approved ad.
func (u *LifecycleUseCase) ApproveCampaign(ctx context.Context, cmd port.Command) (domain.Campaign, error) {
	c, err := u.transitionCampaign(ctx, cmd, domain.CampaignActive, nil, u.requireServableAd)
	if err != nil {
		return domain.Campaign{}, err
	}
	u.notifyActivated(ctx, c)
	return c, nil
}

// RejectCampaign ends review with a rejection and returns any reserved
// budget.
func (u *LifecycleUseCase) RejectCampaign(ctx context.Context, cmd port.Command) (domain.Campaign, error) {
	c, err := u.transitionCampaign(ctx, cmd, domain.CampaignRejected, nil, nil)
	if err != nil {
		return domain.Campaign{}, err
	}
	u.refundReservation(ctx, c, domain.CampaignPendingReview, cmd)
	return c, nil
}

func (u *LifecycleUseCase) PauseCampaign(ctx context.Context, cmd port.Command) (domain.Campaign, error) {
	return u.transitionCampaign(ctx, cmd, domain.CampaignPaused, nil, nil)
}

// ResumeCampaign reactivates a paused campaign. A campaign whose ads are
// all waiting for review stays paused.
func (u *LifecycleUseCase) ResumeCampaign(ctx context.Context, cmd port.Command) (domain.Campaign, error) {
	return u.transitionCampaign(ctx, cmd, domain.CampaignActive, nil, u.requireServableAd)
}

// CompleteCampaign closes a running campaign and returns the unspent part of
// a prepaid budget.
func (u *LifecycleUseCase) CompleteCampaign(ctx context.Context, cmd port.Command) (domain.Campaign, error) {
	var from domain.CampaignStatus
	c, err := u.transitionCampaign(ctx, cmd, domain.CampaignCompleted, nil, func(_ context.Context, c domain.Campaign) error {
		from = c.Status
		return nil
	})
	if err != nil {
		return domain.Campaign{}, err
	}
	u.refundReservation(ctx, c, from, cmd)
	return c, nil
}

func (u *LifecycleUseCase) ArchiveCampaign(ctx context.Context, cmd port.Command) (domain.Campaign, error) {
	var from domain.CampaignStatus
	c, err := u.transitionCampaign(ctx, cmd, domain.CampaignArchived, nil, func(_ context.Context, c domain.Campaign) error {
		from = c.Status
		return nil
	})
	if err != nil {
		return domain.Campaign{}, err
	}
	u.refundReservation(ctx, c, from, cmd)
	return c, nil
}

func (u *LifecycleUseCase) SubmitAd(ctx context.Context, cmd port.Command) (domain.Ad, error) {
	return u.transitionAd(ctx, cmd, domain.AdPendingReview, nil)
}

func (u *LifecycleUseCase) StartReview(ctx context.Context, cmd port.Command) (domain.Ad, error) {
	return u.transitionAd(ctx, cmd, domain.AdInReview, nil)
}

// ApproveAd approves the creative and, when enabled, activates its campaign
// if that campaign is still in DRAFT or PENDING_REVIEW.
func (u *LifecycleUseCase) ApproveAd(ctx context.Context, cmd port.Command) (domain.Ad, error) {
	ad, err := u.transitionAd(ctx, cmd, domain.AdApproved, nil)
	if err != nil {
		return domain.Ad{}, err
	}
	c, ok := u.campaignOf(ctx, ad)
	if !ok {
		return ad, nil
	}
	notify(ctx, u.logger, u.notifier, domain.Notification{
		Type:         domain.NotifyAdApproved,
		AdvertiserID: c.AdvertiserID,
		EntityID:     ad.ID,
		Message:      "Your ad was approved",
		Data:         map[string]string{"campaign_id": c.ID.String()},
	})
	u.afterApproval(ctx, *c, "ad "+ad.ID.String()+" approved")
	return ad, nil
}

// ActivateAd starts delivery of an approved ad.
func (u *LifecycleUseCase) ActivateAd(ctx context.Context, cmd port.Command) (domain.Ad, error) {
	ad, err := u.transitionAd(ctx, cmd, domain.AdActive, nil)
	if err != nil {
		return domain.Ad{}, err
	}
	if c, ok := u.campaignOf(ctx, ad); ok {
		u.afterApproval(ctx, *c, "ad "+ad.ID.String()+" activated")
	}
	return ad, nil
}

// RejectAd rejects the creative with a reason. A campaign in review whose
// prepaid budget depended on this ad, or which has nothing left to review,
// is rejected too.
func (u *LifecycleUseCase) RejectAd(ctx context.Context, cmd port.Command) (domain.Ad, error) {
	ad, err := u.transitionAd(ctx, cmd, domain.AdRejected, func(a *domain.Ad) error {
		a.RejectionReason = cmd.Reason
		return nil
	})
	if err != nil {
		return domain.Ad{}, err
	}
	c, ok := u.campaignOf(ctx, ad)
	if !ok {
		return ad, nil
	}
	notify(ctx, u.logger, u.notifier, domain.Notification{
		Type:         domain.NotifyAdRejected,
		AdvertiserID: c.AdvertiserID,
		EntityID:     ad.ID,
		Message:      "Your ad was rejected",
		Data:         map[string]string{"campaign_id": c.ID.String(), "reason": cmd.Reason},
	})
	if c.Status != domain.CampaignPendingReview {
		return ad, nil
	}
	if !c.Objective.ReservesBudget() {
		live, err := u.hasLiveAd(ctx, c.ID)
		if err != nil || live {
			return ad, nil
		}
	}
	_, err = u.RejectCampaign(ctx, port.Command{
		ID:     c.ID,
		Actor:  domain.SystemActor,
		Reason: "ad rejected: " + cmd.Reason,
	})
	if err != nil && !errors.Is(err, domain.ErrIllegalTransition) {
		u.logger.Error("reject campaign after ad rejection",
			slog.String("campaign_id", c.ID.String()),
			slog.String("error", err.Error()))
	}
	return ad, nil
}

// campaignOf loads the campaign of an ad whose status just changed. The ad
// change stands either way; a failed read leaves the campaign follow-up to
// the reconciliation sweep.
func (u *LifecycleUseCase) campaignOf(ctx context.Context, ad domain.Ad) (*domain.Campaign, bool) {
	c, err := u.campaigns.GetCampaign(ctx, ad.CampaignID)
	if err != nil {
		u.logger.Warn("campaign follow-up after ad change skipped",
			slog.String("ad_id", ad.ID.String()),
			slog.String("campaign_id", ad.CampaignID.String()),
			slog.String("error", err.Error()))
		return nil, false
	}
	return c, true
}

// ReopenAd moves a rejected ad back to DRAFT. An ad can be reopened once.
func (u *LifecycleUseCase) ReopenAd(ctx context.Context, cmd port.Command) (domain.Ad, error) {
	return u.transitionAd(ctx, cmd, domain.AdDraft, func(a *domain.Ad) error {
		if a.Reopened {
			return &domain.TransitionError{Entity: domain.EntityAd, From: string(a.Status), To: string(domain.AdDraft)}
		}
		a.Reopened = true
		a.RejectionReason = ""
		return nil
	})
}

// ReconcileOrphans activates campaigns that own an approved ad but are still
// in DRAFT or PENDING_REVIEW. Failures on single campaigns are logged and
// the sweep goes on.
func (u *LifecycleUseCase) ReconcileOrphans(ctx context.Context) (int, error) {
	orphans, err := u.campaigns.ListOrphanedCampaigns(ctx, orphanBatch)
	if err != nil {
		return 0, fmt.Errorf("list orphaned campaigns: %w", err)
	}
	repaired := 0
	for _, c := range orphans {
		if ctx.Err() != nil {
			return repaired, ctx.Err()
		}
		ok, err := u.autoActivate(ctx, c, "reconciliation sweep")
		if err != nil {
			u.logger.Warn("orphaned campaign not repaired",
				slog.String("campaign_id", c.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if ok {
			repaired++
			metrics.OrphansRepaired.Inc()
		}
	}
	if repaired > 0 {
		u.logger.Info("orphaned campaigns repaired", slog.Int("count", repaired))
	}
	return repaired, nil
}

// RunSweep calls ReconcileOrphans every interval until ctx is done.
func (u *LifecycleUseCase) RunSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := u.ReconcileOrphans(ctx); err != nil && ctx.Err() == nil {
				u.logger.Error("reconciliation sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// afterApproval auto-activates c when the settings allow it.
func (u *LifecycleUseCase) afterApproval(ctx context.Context, c domain.Campaign, reason string) {
	if !u.settings.Snapshot().AutoActivate {
		return
	}
	if _, err := u.autoActivate(ctx, c, reason); err != nil {
		u.logger.Warn("campaign auto-activation failed",
			slog.String("campaign_id", c.ID.String()),
			slog.String("error", err.Error()))
	}
}

// autoActivate moves a DRAFT or PENDING_REVIEW campaign straight to ACTIVE.
// Campaigns in any other status are left alone. A prepaid campaign that was
// never submitted reserves its budget first.
func (u *LifecycleUseCase) autoActivate(ctx context.Context, c domain.Campaign, reason string) (bool, error) {
	if c.Status.BlocksAutoActivation() {
		return false, nil
	}
	cmd := port.Command{ID: c.ID, Actor: domain.SystemActor, Reason: reason}
	allowed := func(s domain.CampaignStatus) bool { return !s.BlocksAutoActivation() }
	activated, err := u.transitionCampaign(ctx, cmd, domain.CampaignActive, allowed, func(ctx context.Context, c domain.Campaign) error {
		if c.Objective.ReservesBudget() && c.Status == domain.CampaignDraft {
			return u.reserve(ctx, c, domain.SystemActor)
		}
		return nil
	})
	if errors.Is(err, domain.ErrIllegalTransition) {
		// somebody else moved it first
		return false, nil
	}
	if err != nil {
		return false, err
	}
	u.notifyActivated(ctx, activated)
	return true, nil
}

// transitionCampaign applies from -> to on a fresh read. allowed overrides
// the state table when set. guard runs before the write and may veto it. A
// lost race is retried once and then reported as ErrConflict.
func (u *LifecycleUseCase) transitionCampaign(
	ctx context.Context,
	cmd port.Command,
	to domain.CampaignStatus,
	allowed func(domain.CampaignStatus) bool,
	guard func(context.Context, domain.Campaign) error,
) (domain.Campaign, error) {
	if allowed == nil {
		allowed = func(from domain.CampaignStatus) bool { return from.CanTransitionTo(to) }
	}
	for attempt := 0; attempt < 2; attempt++ {
		c, err := u.campaigns.GetCampaign(ctx, cmd.ID)
		if err != nil {
			return domain.Campaign{}, err
		}
		from := c.Status
		if !allowed(from) {
			return domain.Campaign{}, &domain.TransitionError{Entity: domain.EntityCampaign, From: string(from), To: string(to)}
		}
		if guard != nil {
			if err := guard(ctx, *c); err != nil {
				return domain.Campaign{}, err
			}
		}
		now := u.now().UTC()
		ok, err := u.campaigns.UpdateCampaignStatus(ctx, c.ID, from, to, u.audit(domain.EntityCampaign, c.ID, cmd, string(from), string(to), now))
		if err != nil {
			return domain.Campaign{}, err
		}
		if ok {
			c.Status = to
			c.UpdatedAt = now
			metrics.LifecycleTransitions.WithLabelValues(string(domain.EntityCampaign), string(to)).Inc()
			u.logger.Info("campaign status changed",
				slog.String("campaign_id", c.ID.String()),
				slog.String("from", string(from)),
				slog.String("to", string(to)),
				slog.String("actor", cmd.Actor))
			return *c, nil
		}
	}
	return domain.Campaign{}, fmt.Errorf("campaign %s: %w", cmd.ID, domain.ErrConflict)
}

// transitionAd is the ad counterpart of transitionCampaign. mutate may
// adjust the ad before the write or veto it.
func (u *LifecycleUseCase) transitionAd(ctx context.Context, cmd port.Command, to domain.AdStatus, mutate func(*domain.Ad) error) (domain.Ad, error) {
	for attempt := 0; attempt < 2; attempt++ {
		ad, err := u.ads.GetAd(ctx, cmd.ID)
		if err != nil {
			return domain.Ad{}, err
		}
		from := ad.Status
		if !from.CanTransitionTo(to) {
			return domain.Ad{}, &domain.TransitionError{Entity: domain.EntityAd, From: string(from), To: string(to)}
		}
		next := *ad
		if mutate != nil {
			if err := mutate(&next); err != nil {
				return domain.Ad{}, err
			}
		}
		now := u.now().UTC()
		next.Status = to
		next.UpdatedAt = now
		ok, err := u.ads.UpdateAdStatus(ctx, next, from, u.audit(domain.EntityAd, ad.ID, cmd, string(from), string(to), now))
		if err != nil {
			return domain.Ad{}, err
		}
		if ok {
			metrics.LifecycleTransitions.WithLabelValues(string(domain.EntityAd), string(to)).Inc()
			u.logger.Info("ad status changed",
				slog.String("ad_id", ad.ID.String()),
				slog.String("from", string(from)),
				slog.String("to", string(to)),
				slog.String("actor", cmd.Actor))
			return next, nil
		}
	}
	return domain.Ad{}, fmt.Errorf("ad %s: %w", cmd.ID, domain.ErrConflict)
}

func (u *LifecycleUseCase) audit(kind domain.EntityKind, id uuid.UUID, cmd port.Command, from, to string, now time.Time) domain.AuditEntry {
	actor := cmd.Actor
	if actor == "" {
		actor = domain.SystemActor
	}
	return domain.AuditEntry{
		ID:         uuid.New(),
		Entity:     kind,
		EntityID:   id,
		Actor:      actor,
		FromStatus: from,
		ToStatus:   to,
		Reason:     cmd.Reason,
		CreatedAt:  now,
	}
}

func (u *LifecycleUseCase) requireServableAd(ctx context.Context, c domain.Campaign) error {
	ads, err := u.ads.ListCampaignAds(ctx, c.ID)
	if err != nil {
		return err
	}
	for _, ad := range ads {
		if ad.Status.Servable() {
			return nil
		}
	}
	return fmt.Errorf("campaign %s: %w", c.ID, domain.ErrNothingApproved)
}

// hasLiveAd reports whether the campaign still has an ad that is servable or
// waiting for review.
func (u *LifecycleUseCase) hasLiveAd(ctx context.Context, campaignID uuid.UUID) (bool, error) {
	ads, err := u.ads.ListCampaignAds(ctx, campaignID)
	if err != nil {
		return false, err
	}
	for _, ad := range ads {
		if ad.Status.Servable() || ad.Status.AwaitingReview() {
			return true, nil
		}
	}
	return false, nil
}

// reserve debits a prepaid campaign's budget. The key makes a repeated
// submission reuse the first debit.
func (u *LifecycleUseCase) reserve(ctx context.Context, c domain.Campaign, actor string) error {
	w, err := u.wallets.GetWalletByAdvertiser(ctx, c.AdvertiserID)
	if err != nil {
		return err
	}
	id := c.ID
	_, err = u.ledger.Debit(ctx, domain.LedgerRequest{
		WalletID:       w.ID,
		Amount:         c.BudgetAmount,
		Type:           domain.TxAdSpend,
		CampaignID:     &id,
		IdempotencyKey: reserveKey(c.ID),
		Description:    "budget for campaign " + c.Name,
		Actor:          actor,
	})
	return err
}

// reservation idempotency keys of a prepaid campaign
func reserveKey(id uuid.UUID) string { return "reserve:" + id.String() }
func releaseKey(id uuid.UUID) string { return "release:" + id.String() }

// refundReservation returns the unspent prepaid budget of a campaign that
// was closed from a status holding a reservation. The spend is re-read after
// the status change, so metering that committed before the close is not
// refunded. Failures are logged; the key lets an operator replay the refund.
func (u *LifecycleUseCase) refundReservation(ctx context.Context, c domain.Campaign, from domain.CampaignStatus, cmd port.Command) {
	if !c.Objective.ReservesBudget() {
		return
	}
	var amount int64
	err := func() error {
		w, err := u.wallets.GetWalletByAdvertiser(ctx, c.AdvertiserID)
		if err != nil {
			return err
		}
		held, err := u.holdsReservation(ctx, w.ID, c.ID, from)
		if err != nil || !held {
			return err
		}
		fresh, err := u.campaigns.GetCampaign(ctx, c.ID)
		if err != nil {
			return err
		}
		amount = fresh.RemainingBudget()
		if amount <= 0 {
			return nil
		}
		reason := cmd.Reason
		if reason == "" {
			reason = "campaign " + string(c.Status)
		}
		_, err = u.ledger.Refund(ctx, port.RefundRequest{
			WalletID:       w.ID,
			AdvertiserID:   c.AdvertiserID,
			CampaignID:     c.ID,
			Amount:         amount,
			Reason:         reason,
			Actor:          cmd.Actor,
			IdempotencyKey: releaseKey(c.ID),
		})
		return err
	}()
	if err != nil {
		u.logger.Error("refund of reserved budget failed",
			slog.String("campaign_id", c.ID.String()),
			slog.String("amount", strconv.FormatInt(amount, 10)),
			slog.String("error", err.Error()))
	}
}

// holdsReservation reports whether a prepaid campaign leaving from still has
// its budget on hold. A DRAFT holds it only after a submission or
// auto-activation debited the wallet and then failed to move the campaign.
func (u *LifecycleUseCase) holdsReservation(ctx context.Context, walletID, campaignID uuid.UUID, from domain.CampaignStatus) (bool, error) {
	switch from {
	case domain.CampaignPendingReview, domain.CampaignActive, domain.CampaignPaused:
		return true, nil
	case domain.CampaignDraft:
		var held bool
		err := u.wallets.InTx(ctx, walletID, func(ctx context.Context, tx port.WalletTx) error {
			t, err := tx.FindTransaction(ctx, reserveKey(campaignID))
			held = t != nil
			return err
		})
		return held, err
	default:
		return false, nil
	}
}

func (u *LifecycleUseCase) notifyActivated(ctx context.Context, c domain.Campaign) {
	notify(ctx, u.logger, u.notifier, domain.Notification{
		Type:         domain.NotifyCampaignActivated,
		AdvertiserID: c.AdvertiserID,
		EntityID:     c.ID,
		Message:      "Your campaign " + c.Name + " is live",
	})
}
