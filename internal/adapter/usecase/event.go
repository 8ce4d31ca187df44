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

// Reasons a chargeable event was stored without a charge.
const (
	UnbilledBudgetExhausted = "budget_exhausted"
	UnbilledNoFunds         = "insufficient_funds"
	UnbilledWalletFrozen    = "wallet_frozen"
	UnbilledCampaignClosed  = "campaign_closed"
)

// EventUseCase stores delivered ad events and meters spend. A chargeable
// event, its ledger debit, the campaign spend and the daily stats counter
// are written in one wallet transaction.
type EventUseCase struct {
	events    port.EventRepository
	ads       port.AdRepository
	campaigns port.CampaignRepository
	wallets   port.WalletRepository
	ledger    *WalletUseCase
	lifecycle port.LifecycleUseCase
	counter   port.ImpressionCounter
	publisher port.EventPublisher
	logger    *slog.Logger

	now func() time.Time
}

// NewEventUseCase wires event metering. publisher may be nil.
func NewEventUseCase(
	events port.EventRepository,
	ads port.AdRepository,
	campaigns port.CampaignRepository,
	wallets port.WalletRepository,
	ledger *WalletUseCase,
	lifecycle port.LifecycleUseCase,
	counter port.ImpressionCounter,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *EventUseCase {
	return &EventUseCase{
		events:    events,
		ads:       ads,
		campaigns: campaigns,
		wallets:   wallets,
		ledger:    ledger,
		lifecycle: lifecycle,
		counter:   counter,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordEvent stores e once. The cost is computed here from the ad group's
// billing model; a caller supplied CostAmount is ignored.
func (u *EventUseCase) RecordEvent(ctx context.Context, e domain.AdEvent) (port.EventReceipt, error) {
	if !e.EventType.Valid() {
		return port.EventReceipt{}, &domain.ValidationError{Field: "event_type", Reason: "unknown event type " + string(e.EventType)}
	}
	if e.AdID == uuid.Nil {
		return port.EventReceipt{}, &domain.ValidationError{Field: "ad_id", Reason: "required"}
	}
	if e.ClearingPrice < 0 {
		return port.EventReceipt{}, &domain.ValidationError{Field: "clearing_price", Reason: "must not be negative"}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := u.now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}

	ad, err := u.ads.GetAd(ctx, e.AdID)
	if err != nil {
		return port.EventReceipt{}, err
	}
	group, err := u.ads.GetAdGroup(ctx, ad.AdGroupID)
	if err != nil {
		return port.EventReceipt{}, err
	}
	e.AdGroupID, e.CampaignID, e.CostAmount = group.ID, ad.CampaignID, 0

	var cost int64
	if group.BillingModel.ChargeableEvent() == e.EventType {
		price := group.BidAmount
		if e.ClearingPrice > 0 && e.ClearingPrice < price {
			price = e.ClearingPrice
		}
		cost = group.BillingModel.Cost(price)
	}

	var receipt port.EventReceipt
	if cost == 0 {
		receipt, err = u.store(ctx, e)
	} else {
		receipt, err = u.meter(ctx, e, cost, now)
	}
	if errors.Is(err, domain.ErrDuplicateEvent) {
		return u.duplicate(ctx, e)
	}
	if err != nil {
		return port.EventReceipt{}, err
	}

	metrics.EventsRecorded.WithLabelValues(string(e.EventType), strconv.FormatBool(receipt.Billed)).Inc()
	if e.EventType == domain.EventImpression && u.counter != nil {
		if err := u.counter.RecordImpression(ctx, receipt.Event); err != nil {
			u.logger.Warn("impression not recorded for frequency cap",
				slog.String("event_id", e.ID.String()),
				slog.String("error", err.Error()))
		}
	}
	if u.publisher != nil {
		if err := u.publisher.PublishEvent(ctx, receipt.Event); err != nil {
			u.logger.Warn("event not published",
				slog.String("event_id", e.ID.String()),
				slog.String("error", err.Error()))
		}
	}
	return receipt, nil
}

// store appends a free event outside the wallet path.
func (u *EventUseCase) store(ctx context.Context, e domain.AdEvent) (port.EventReceipt, error) {
	if err := u.events.AppendEvent(ctx, e); err != nil {
		return port.EventReceipt{}, err
	}
	if _, err := u.events.Increment(ctx, e.EventType.StatsCounter(), e.AdID, 1); err != nil {
		u.logger.Warn("stats counter not updated",
			slog.String("ad_id", e.AdID.String()),
			slog.String("error", err.Error()))
	}
	return port.EventReceipt{Event: e}, nil
}

// meter appends a chargeable event and charges up to the remaining budget.
// A budget or wallet that cannot pay leaves the event unbilled and stops the
// campaign after commit. Only ACTIVE and PAUSED campaigns are charged.
func (u *EventUseCase) meter(ctx context.Context, e domain.AdEvent, cost int64, now time.Time) (port.EventReceipt, error) {
	c, err := u.campaigns.GetCampaign(ctx, e.CampaignID)
	if err != nil {
		return port.EventReceipt{}, err
	}
	w, err := u.wallets.GetWalletByAdvertiser(ctx, c.AdvertiserID)
	if err != nil {
		return port.EventReceipt{}, err
	}

	var (
		receipt  port.EventReceipt
		campaign domain.Campaign
	)
	err = u.wallets.InTx(ctx, w.ID, func(ctx context.Context, tx port.WalletTx) error {
		receipt = port.EventReceipt{}
		locked, err := tx.LockCampaign(ctx, e.CampaignID)
		if err != nil {
			return err
		}
		campaign = locked
		var (
			rolled bool
			charge int64
		)
		switch {
		case !campaign.Status.Metered():
			// a closed prepaid campaign has already been refunded its remainder
			receipt.Reason = UnbilledCampaignClosed
		default:
			rolled = campaign.RollSpendPeriod(now)
			charge = min(cost, campaign.RemainingBudget())
			if charge == 0 {
				receipt.Reason = UnbilledBudgetExhausted
			}
		}

		// prepaid budgets were taken from the wallet on submission
		if charge > 0 && !campaign.Objective.ReservesBudget() {
			id := campaign.ID
			t, _, err := u.ledger.post(ctx, tx, domain.LedgerRequest{
				WalletID:       w.ID,
				Amount:         charge,
				Type:           domain.TxAdSpend,
				CampaignID:     &id,
				IdempotencyKey: "event:" + e.ID.String(),
				Description:    fmt.Sprintf("%s on ad %s", e.EventType, e.AdID),
				Actor:          domain.SystemActor,
			}, -1)
			switch {
			case errors.Is(err, domain.ErrInsufficientFunds):
				charge, receipt.Reason = 0, UnbilledNoFunds
			case errors.Is(err, domain.ErrWalletFrozen):
				charge, receipt.Reason = 0, UnbilledWalletFrozen
			case err != nil:
				return err
			default:
				receipt.Transaction = &t
			}
		}

		if charge > 0 {
			campaign.BudgetSpent += charge
		}
		if charge > 0 || rolled {
			if err := tx.UpdateCampaignSpend(ctx, campaign); err != nil {
				return err
			}
		}
		e.CostAmount = charge
		if err := tx.AppendEvent(ctx, e); err != nil {
			return err
		}
		if _, err := tx.Increment(ctx, e.EventType.StatsCounter(), e.AdID, 1); err != nil {
			return err
		}
		receipt.Event = e
		receipt.Billed = charge > 0
		return nil
	})
	if err != nil {
		return port.EventReceipt{}, err
	}
	u.stopIfUnfunded(ctx, campaign, receipt.Reason)
	return receipt, nil
}

// stopIfUnfunded pauses a campaign the wallet cannot pay for and completes
// a LIFETIME campaign whose budget is used up. DAILY budgets refill on the
// next UTC day, so they are left running.
func (u *EventUseCase) stopIfUnfunded(ctx context.Context, c domain.Campaign, reason string) {
	if c.Status != domain.CampaignActive || u.lifecycle == nil {
		return
	}
	cmd := port.Command{ID: c.ID, Actor: domain.SystemActor}
	var err error
	switch {
	case reason == UnbilledNoFunds || reason == UnbilledWalletFrozen:
		cmd.Reason = reason
		_, err = u.lifecycle.PauseCampaign(ctx, cmd)
	case c.BudgetType == domain.BudgetLifetime && c.RemainingBudget() == 0:
		cmd.Reason = UnbilledBudgetExhausted
		_, err = u.lifecycle.CompleteCampaign(ctx, cmd)
	default:
		return
	}
	if err != nil && !errors.Is(err, domain.ErrIllegalTransition) {
		u.logger.Warn("campaign not stopped",
			slog.String("campaign_id", c.ID.String()),
			slog.String("reason", cmd.Reason),
			slog.String("error", err.Error()))
	}
}

func (u *EventUseCase) duplicate(ctx context.Context, e domain.AdEvent) (port.EventReceipt, error) {
	prev, err := u.events.GetEvent(ctx, e.ID)
	if err != nil {
		return port.EventReceipt{}, err
	}
	return port.EventReceipt{Event: *prev, Billed: prev.CostAmount > 0, Duplicate: true}, nil
}

// GetStats returns aggregated events and cost for the specified campaign
// (optional) and time period.
func (u *EventUseCase) GetStats(ctx context.Context, req port.StatsReq) (*port.StatsResp, error) {
	if !req.To.IsZero() && req.To.Before(req.From) {
		return nil, &domain.ValidationError{Field: "to", Reason: "must not be before from"}
	}
	return u.events.GetStats(ctx, req)
}
