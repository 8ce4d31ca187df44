package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
	"social-ads/internal/metrics"
)

const (
	defaultTransactionPage = 50
	maxTransactionPage     = 500
)

// WalletUseCase is the only writer of wallet balances. Each mutation runs
// under the wallet's row lock, writes one completed transaction and updates
// the cached balance in the same database transaction.
type WalletUseCase struct {
	repo     port.WalletRepository
	notifier port.Notifier
	logger   *slog.Logger

	now func() time.Time
}

func NewWalletUseCase(repo port.WalletRepository, notifier port.Notifier, logger *slog.Logger) *WalletUseCase {
	return &WalletUseCase{repo: repo, notifier: notifier, logger: logger, now: time.Now}
}

func (u *WalletUseCase) GetWallet(ctx context.Context, walletID uuid.UUID) (domain.WalletAccount, error) {
	w, err := u.repo.GetWallet(ctx, walletID)
	if err != nil {
		return domain.WalletAccount{}, err
	}
	return *w, nil
}

// Transactions returns the newest transactions first.
func (u *WalletUseCase) Transactions(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.WalletTransaction, error) {
	if limit <= 0 {
		limit = defaultTransactionPage
	}
	limit = min(limit, maxTransactionPage)
	return u.repo.ListTransactions(ctx, walletID, limit)
}

// Credit adds req.Amount to the wallet. Credits are accepted on frozen
// wallets.
func (u *WalletUseCase) Credit(ctx context.Context, req domain.LedgerRequest) (domain.WalletTransaction, error) {
	if !req.Type.Credits() {
		return domain.WalletTransaction{}, &domain.ValidationError{Field: "type", Reason: fmt.Sprintf("%s is not a credit", req.Type)}
	}
	return u.apply(ctx, "credit", req, 1)
}

// Debit takes req.Amount from the wallet. It fails without writing anything
// when the wallet is frozen or the balance is short.
func (u *WalletUseCase) Debit(ctx context.Context, req domain.LedgerRequest) (domain.WalletTransaction, error) {
	if !req.Type.Debits() {
		return domain.WalletTransaction{}, &domain.ValidationError{Field: "type", Reason: fmt.Sprintf("%s is not a debit", req.Type)}
	}
	return u.apply(ctx, "debit", req, -1)
}

func (u *WalletUseCase) apply(ctx context.Context, op string, req domain.LedgerRequest, sign int64) (domain.WalletTransaction, error) {
	if err := validateLedgerRequest(req); err != nil {
		return domain.WalletTransaction{}, err
	}
	var out domain.WalletTransaction
	err := u.repo.InTx(ctx, req.WalletID, func(ctx context.Context, tx port.WalletTx) error {
		t, _, err := u.post(ctx, tx, req, sign)
		out = t
		return err
	})
	u.observe(op, req.WalletID, err)
	if err != nil {
		return domain.WalletTransaction{}, err
	}
	return out, nil
}

// RedeemPromo credits a promo code once per advertiser. The check and the
// redemption record are written in the same transaction as the credit.
func (u *WalletUseCase) RedeemPromo(ctx context.Context, req port.RedeemRequest) (domain.WalletTransaction, error) {
	if req.WalletID == uuid.Nil || req.AdvertiserID == uuid.Nil {
		return domain.WalletTransaction{}, &domain.ValidationError{Field: "wallet", Reason: "wallet and advertiser are required"}
	}
	promoID := req.PromoCodeID
	if promoID == uuid.Nil {
		code := strings.TrimSpace(req.Code)
		if code == "" {
			return domain.WalletTransaction{}, &domain.ValidationError{Field: "code", Reason: "promo code is required"}
		}
		p, err := u.repo.GetPromoByCode(ctx, code)
		if err != nil {
			return domain.WalletTransaction{}, err
		}
		promoID = p.ID
	}

	var out domain.WalletTransaction
	err := u.repo.InTx(ctx, req.WalletID, func(ctx context.Context, tx port.WalletTx) error {
		if w := tx.Wallet(); w.AdvertiserID != req.AdvertiserID {
			return &domain.ValidationError{Field: "wallet", Reason: "wallet does not belong to advertiser"}
		}
		promo, err := tx.LockPromo(ctx, promoID)
		if err != nil {
			return err
		}
		now := u.now()
		if !promo.IsActive || (promo.ValidUntil != nil && now.After(*promo.ValidUntil)) {
			return domain.ErrPromoExpired
		}
		redeemed, err := tx.HasRedemption(ctx, promoID, req.AdvertiserID)
		if err != nil {
			return err
		}
		if redeemed {
			return domain.ErrAlreadyRedeemed
		}
		if promo.UsageLimit > 0 && promo.RedemptionCount >= promo.UsageLimit {
			return domain.ErrPromoLimitReached
		}

		t, _, err := u.post(ctx, tx, domain.LedgerRequest{
			WalletID:       req.WalletID,
			Amount:         promo.Amount,
			Type:           domain.TxPromoCredit,
			PromoCodeID:    &promoID,
			IdempotencyKey: "promo:" + promoID.String(),
			Description:    "promo code " + promo.Code,
			Actor:          req.Actor,
		}, 1)
		if err != nil {
			return err
		}
		err = tx.InsertRedemption(ctx, domain.PromoRedemption{
			ID:            uuid.New(),
			PromoCodeID:   promoID,
			AdvertiserID:  req.AdvertiserID,
			WalletID:      req.WalletID,
			TransactionID: t.ID,
			Amount:        promo.Amount,
			CreatedAt:     now,
		})
		if err != nil {
			return err
		}
		if _, err = tx.Increment(ctx, domain.CounterPromoRedemptions, promoID, 1); err != nil {
			return err
		}
		out = t
		return nil
	})
	u.observe("redeem_promo", req.WalletID, err)
	if err != nil {
		return domain.WalletTransaction{}, err
	}
	return out, nil
}

// Refund credits money back for a campaign and notifies the advertiser.
// Without an idempotency key every call creates a new refund.
func (u *WalletUseCase) Refund(ctx context.Context, req port.RefundRequest) (domain.WalletTransaction, error) {
	campaignID := req.CampaignID
	lr := domain.LedgerRequest{
		WalletID:       req.WalletID,
		Amount:         req.Amount,
		Type:           domain.TxRefund,
		IdempotencyKey: req.IdempotencyKey,
		Description:    req.Reason,
		Actor:          req.Actor,
	}
	if campaignID != uuid.Nil {
		lr.CampaignID = &campaignID
	}
	return u.settle(ctx, "refund", lr, 1, func(w domain.WalletAccount, t domain.WalletTransaction) domain.Notification {
		return domain.Notification{
			Type:         domain.NotifyRefundProcessed,
			AdvertiserID: w.AdvertiserID,
			EntityID:     campaignID,
			Message:      fmt.Sprintf("Refund of %d processed", t.Amount),
			Data: map[string]string{
				"transaction_id": t.ID.String(),
				"amount":         strconv.FormatInt(t.Amount, 10),
				"reason":         req.Reason,
			},
		}
	})
}

// ResolveDispute applies an administrative credit or debit with a
// mandatory reason.
func (u *WalletUseCase) ResolveDispute(ctx context.Context, req port.DisputeResolution) (domain.WalletTransaction, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return domain.WalletTransaction{}, &domain.ValidationError{Field: "reason", Reason: "dispute resolution needs a reason"}
	}
	lr := domain.LedgerRequest{
		WalletID:       req.WalletID,
		Type:           domain.TxAdminCredit,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
		Description:    req.Reason,
		Actor:          req.Actor,
	}
	sign := int64(1)
	if req.Amount < 0 {
		lr.Type, lr.Amount, sign = domain.TxAdminDebit, -req.Amount, -1
	}
	return u.settle(ctx, "resolve_dispute", lr, sign, func(w domain.WalletAccount, t domain.WalletTransaction) domain.Notification {
		return domain.Notification{
			Type:         domain.NotifyDisputeResolved,
			AdvertiserID: w.AdvertiserID,
			EntityID:     t.ID,
			Message:      req.Reason,
			Data:         map[string]string{"amount": strconv.FormatInt(t.Amount, 10)},
		}
	})
}

// settle posts one transaction and, when it is new, sends the notification
// built by msg after commit.
func (u *WalletUseCase) settle(ctx context.Context, op string, req domain.LedgerRequest, sign int64,
	msg func(domain.WalletAccount, domain.WalletTransaction) domain.Notification,
) (domain.WalletTransaction, error) {
	if err := validateLedgerRequest(req); err != nil {
		return domain.WalletTransaction{}, err
	}
	var (
		out    domain.WalletTransaction
		wallet domain.WalletAccount
		fresh  bool
	)
	err := u.repo.InTx(ctx, req.WalletID, func(ctx context.Context, tx port.WalletTx) error {
		t, created, err := u.post(ctx, tx, req, sign)
		if err != nil {
			return err
		}
		out, wallet, fresh = t, tx.Wallet(), created
		return nil
	})
	u.observe(op, req.WalletID, err)
	if err != nil {
		return domain.WalletTransaction{}, err
	}
	if fresh {
		notify(ctx, u.logger, u.notifier, msg(wallet, out))
	}
	return out, nil
}

// Freeze blocks debits on the wallet until Unfreeze.
func (u *WalletUseCase) Freeze(ctx context.Context, walletID uuid.UUID, reason, actor string) (domain.WalletAccount, error) {
	if strings.TrimSpace(reason) == "" {
		return domain.WalletAccount{}, &domain.ValidationError{Field: "reason", Reason: "freezing needs a reason"}
	}
	return u.setFrozen(ctx, walletID, true, reason, actor)
}

func (u *WalletUseCase) Unfreeze(ctx context.Context, walletID uuid.UUID, actor string) (domain.WalletAccount, error) {
	return u.setFrozen(ctx, walletID, false, "", actor)
}

func (u *WalletUseCase) setFrozen(ctx context.Context, walletID uuid.UUID, frozen bool, reason, actor string) (domain.WalletAccount, error) {
	var out domain.WalletAccount
	err := u.repo.InTx(ctx, walletID, func(ctx context.Context, tx port.WalletTx) error {
		w := tx.Wallet()
		w.IsFrozen = frozen
		w.FrozenReason = reason
		w.UpdatedAt = u.now()
		if err := tx.UpdateWallet(ctx, w); err != nil {
			return err
		}
		out = w
		return nil
	})
	if err != nil {
		return domain.WalletAccount{}, err
	}
	u.logger.Info("wallet freeze changed",
		slog.String("wallet_id", walletID.String()),
		slog.Bool("frozen", frozen),
		slog.String("actor", actor),
		slog.String("reason", reason))
	return out, nil
}

// Verify recomputes the balance from completed transactions.
func (u *WalletUseCase) Verify(ctx context.Context, walletID uuid.UUID) error {
	w, err := u.repo.GetWallet(ctx, walletID)
	if err != nil {
		return err
	}
	sum, err := u.repo.SumCompleted(ctx, walletID)
	if err != nil {
		return err
	}
	if sum != w.Balance {
		err = fmt.Errorf("%w: wallet %s balance %d, transactions sum to %d", domain.ErrLedgerInvariant, walletID, w.Balance, sum)
		u.invariantBroken(walletID, err)
		return err
	}
	return nil
}

// post writes one completed transaction inside an open wallet transaction.
// A known idempotency key returns the original transaction with created
// false. sign is +1 for credits and -1 for debits.
func (u *WalletUseCase) post(ctx context.Context, tx port.WalletTx, req domain.LedgerRequest, sign int64) (domain.WalletTransaction, bool, error) {
	if req.IdempotencyKey != "" {
		prev, err := tx.FindTransaction(ctx, req.IdempotencyKey)
		if err != nil {
			return domain.WalletTransaction{}, false, err
		}
		if prev != nil {
			if prev.Type != req.Type || prev.Amount != sign*req.Amount {
				return domain.WalletTransaction{}, false, fmt.Errorf("%w: idempotency key %q reused for a different movement", domain.ErrConflict, req.IdempotencyKey)
			}
			return *prev, false, nil
		}
	}

	w := tx.Wallet()
	if sign < 0 {
		if w.IsFrozen {
			return domain.WalletTransaction{}, false, domain.ErrWalletFrozen
		}
		if w.Balance < req.Amount {
			return domain.WalletTransaction{}, false, &domain.InsufficientFundsError{Need: req.Amount, Have: w.Balance}
		}
	}

	now := u.now().UTC()
	t := domain.WalletTransaction{
		ID:             uuid.New(),
		WalletID:       w.ID,
		Type:           req.Type,
		Amount:         sign * req.Amount,
		BalanceBefore:  w.Balance,
		BalanceAfter:   w.Balance + sign*req.Amount,
		Status:         domain.TxCompleted,
		CampaignID:     req.CampaignID,
		PromoCodeID:    req.PromoCodeID,
		IdempotencyKey: req.IdempotencyKey,
		Description:    req.Description,
		Actor:          req.Actor,
		CreatedAt:      now,
	}
	w.Balance = t.BalanceAfter
	switch req.Type {
	case domain.TxAdSpend:
		w.LifetimeSpend += req.Amount
	case domain.TxRefund:
		w.LifetimeRefunds += req.Amount
	}
	w.UpdatedAt = now
	if err := tx.InsertTransaction(ctx, t); err != nil {
		return domain.WalletTransaction{}, false, err
	}
	if err := tx.UpdateWallet(ctx, w); err != nil {
		return domain.WalletTransaction{}, false, err
	}

	// read-back: the stored row must match what was posted
	stored, err := tx.GetTransaction(ctx, t.ID)
	if err != nil {
		return domain.WalletTransaction{}, false, err
	}
	if err := stored.Verify(); err != nil {
		u.invariantBroken(w.ID, err)
		return domain.WalletTransaction{}, false, err
	}
	if stored.Amount != t.Amount || stored.BalanceAfter != tx.Wallet().Balance {
		err := fmt.Errorf("%w: transaction %s stored amount=%d after=%d, wallet balance %d",
			domain.ErrLedgerInvariant, t.ID, stored.Amount, stored.BalanceAfter, tx.Wallet().Balance)
		u.invariantBroken(w.ID, err)
		return domain.WalletTransaction{}, false, err
	}
	return stored, true, nil
}

func (u *WalletUseCase) observe(op string, walletID uuid.UUID, err error) {
	switch {
	case err == nil:
		metrics.LedgerOperations.WithLabelValues(op, "ok").Inc()
	case isBusinessError(err):
		metrics.LedgerOperations.WithLabelValues(op, "rejected").Inc()
		u.logger.Debug("ledger operation rejected",
			slog.String("operation", op),
			slog.String("wallet_id", walletID.String()),
			slog.String("error", err.Error()))
	default:
		metrics.LedgerOperations.WithLabelValues(op, "error").Inc()
	}
}

func (u *WalletUseCase) invariantBroken(walletID uuid.UUID, err error) {
	u.logger.Error("ledger invariant violated",
		slog.String("severity", "fatal"),
		slog.String("wallet_id", walletID.String()),
		slog.String("error", err.Error()))
}

func validateLedgerRequest(req domain.LedgerRequest) error {
	if req.WalletID == uuid.Nil {
		return &domain.ValidationError{Field: "wallet_id", Reason: "required"}
	}
	if req.Amount <= 0 {
		return &domain.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	return nil
}

// isBusinessError reports whether err is an expected rule violation rather
// than an infrastructure failure.
func isBusinessError(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrInsufficientFunds,
		domain.ErrWalletFrozen,
		domain.ErrAlreadyRedeemed,
		domain.ErrPromoLimitReached,
		domain.ErrPromoExpired,
		domain.ErrIllegalTransition,
		domain.ErrNothingApproved,
		domain.ErrConflict,
		domain.ErrBudgetExhausted,
		domain.ErrDuplicateEvent,
		domain.ErrAdvertiserSuspended,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
