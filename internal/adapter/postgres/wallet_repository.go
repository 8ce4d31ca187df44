package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
)

const (
	walletColumns = `id, advertiser_id, balance, is_frozen, frozen_reason, lifetime_spend, lifetime_refunds,
created_at, updated_at`
	transactionColumns = `id, wallet_id, type, amount, balance_before, balance_after, status, campaign_id,
promo_code_id, COALESCE(idempotency_key, ''), description, actor, created_at`
	promoColumns = `id, code, amount, usage_limit, redemption_count, valid_until, is_active, created_at`
)

func scanWallet(row pgx.Row) (domain.WalletAccount, error) {
	var w domain.WalletAccount
	err := row.Scan(&w.ID, &w.AdvertiserID, &w.Balance, &w.IsFrozen, &w.FrozenReason,
		&w.LifetimeSpend, &w.LifetimeRefunds, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

func scanTransaction(row pgx.Row) (domain.WalletTransaction, error) {
	var t domain.WalletTransaction
	err := row.Scan(&t.ID, &t.WalletID, &t.Type, &t.Amount, &t.BalanceBefore, &t.BalanceAfter, &t.Status,
		&t.CampaignID, &t.PromoCodeID, &t.IdempotencyKey, &t.Description, &t.Actor, &t.CreatedAt)
	return t, err
}

func scanPromo(row pgx.Row) (domain.PromoCode, error) {
	var p domain.PromoCode
	err := row.Scan(&p.ID, &p.Code, &p.Amount, &p.UsageLimit, &p.RedemptionCount, &p.ValidUntil, &p.IsActive, &p.CreatedAt)
	return p, err
}

// WalletRepository implements port.WalletRepository. InTx holds the wallet
// row lock for the whole unit of work, so ledger writes on one wallet are
// serialized while different wallets proceed in parallel.
type WalletRepository struct {
	pool *pgxpool.Pool
}

func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

func (r *WalletRepository) InTx(ctx context.Context, walletID uuid.UUID, fn func(ctx context.Context, tx port.WalletTx) error) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		w, err := scanWallet(tx.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallet_accounts WHERE id = $1 FOR UPDATE`, walletID))
		if err != nil {
			return notFound(err, "wallet", walletID)
		}
		return fn(ctx, &walletTx{tx: tx, wallet: w})
	})
}

func (r *WalletRepository) GetWallet(ctx context.Context, walletID uuid.UUID) (*domain.WalletAccount, error) {
	w, err := scanWallet(r.pool.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallet_accounts WHERE id = $1`, walletID))
	if err != nil {
		return nil, notFound(err, "wallet", walletID)
	}
	return &w, nil
}

func (r *WalletRepository) GetWalletByAdvertiser(ctx context.Context, advertiserID uuid.UUID) (*domain.WalletAccount, error) {
	w, err := scanWallet(r.pool.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallet_accounts WHERE advertiser_id = $1`, advertiserID))
	if err != nil {
		return nil, notFound(err, "wallet of advertiser", advertiserID)
	}
	return &w, nil
}

func (r *WalletRepository) ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.WalletTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+transactionColumns+`
FROM wallet_transactions WHERE wallet_id = $1 ORDER BY created_at DESC, id LIMIT $2`, walletID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.WalletTransaction, error) {
		return scanTransaction(row)
	})
}

func (r *WalletRepository) SumCompleted(ctx context.Context, walletID uuid.UUID) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(sum(amount), 0)::bigint FROM wallet_transactions
WHERE wallet_id = $1 AND status = 'COMPLETED'`, walletID).Scan(&sum)
	return sum, err
}

func (r *WalletRepository) GetPromoByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	p, err := scanPromo(r.pool.QueryRow(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// walletTx is the port.WalletTx handed to InTx callbacks.
type walletTx struct {
	tx     pgx.Tx
	wallet domain.WalletAccount
}

func (t *walletTx) Wallet() domain.WalletAccount { return t.wallet }

func (t *walletTx) UpdateWallet(ctx context.Context, w domain.WalletAccount) error {
	_, err := t.tx.Exec(ctx, `UPDATE wallet_accounts
SET balance = $2, is_frozen = $3, frozen_reason = $4, lifetime_spend = $5, lifetime_refunds = $6, updated_at = $7
WHERE id = $1`,
		w.ID, w.Balance, w.IsFrozen, w.FrozenReason, w.LifetimeSpend, w.LifetimeRefunds, w.UpdatedAt)
	if err != nil {
		return err
	}
	t.wallet = w
	return nil
}

func (t *walletTx) FindTransaction(ctx context.Context, key string) (*domain.WalletTransaction, error) {
	tr, err := scanTransaction(t.tx.QueryRow(ctx, `SELECT `+transactionColumns+`
FROM wallet_transactions WHERE wallet_id = $1 AND idempotency_key = $2`, t.wallet.ID, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

func (t *walletTx) InsertTransaction(ctx context.Context, tr domain.WalletTransaction) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO wallet_transactions
    (id, wallet_id, type, amount, balance_before, balance_after, status, campaign_id, promo_code_id,
     idempotency_key, description, actor, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		tr.ID, tr.WalletID, string(tr.Type), tr.Amount, tr.BalanceBefore, tr.BalanceAfter, string(tr.Status),
		tr.CampaignID, tr.PromoCodeID, nullable(tr.IdempotencyKey), tr.Description, tr.Actor, tr.CreatedAt)
	if isUniqueViolation(err, "wallet_transactions_idempotency_idx") {
		return domain.ErrConflict
	}
	return err
}

func (t *walletTx) GetTransaction(ctx context.Context, id uuid.UUID) (domain.WalletTransaction, error) {
	tr, err := scanTransaction(t.tx.QueryRow(ctx, `SELECT `+transactionColumns+`
FROM wallet_transactions WHERE id = $1 AND wallet_id = $2`, id, t.wallet.ID))
	if err != nil {
		return domain.WalletTransaction{}, notFound(err, "transaction", id)
	}
	return tr, nil
}

func (t *walletTx) LockPromo(ctx context.Context, promoID uuid.UUID) (domain.PromoCode, error) {
	p, err := scanPromo(t.tx.QueryRow(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE id = $1 FOR UPDATE`, promoID))
	if err != nil {
		return domain.PromoCode{}, notFound(err, "promo code", promoID)
	}
	return p, nil
}

func (t *walletTx) HasRedemption(ctx context.Context, promoID, advertiserID uuid.UUID) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (
    SELECT 1 FROM promo_redemptions WHERE promo_code_id = $1 AND advertiser_id = $2)`, promoID, advertiserID).Scan(&exists)
	return exists, err
}

func (t *walletTx) InsertRedemption(ctx context.Context, rd domain.PromoRedemption) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO promo_redemptions
    (id, promo_code_id, advertiser_id, wallet_id, transaction_id, amount, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rd.ID, rd.PromoCodeID, rd.AdvertiserID, rd.WalletID, rd.TransactionID, rd.Amount, rd.CreatedAt)
	if isUniqueViolation(err, "promo_redemptions_once") {
		return domain.ErrAlreadyRedeemed
	}
	return err
}

func (t *walletTx) LockCampaign(ctx context.Context, campaignID uuid.UUID) (domain.Campaign, error) {
	c, err := scanCampaign(t.tx.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns c WHERE c.id = $1 FOR UPDATE`, campaignID))
	if err != nil {
		return domain.Campaign{}, notFound(err, "campaign", campaignID)
	}
	return c, nil
}

func (t *walletTx) UpdateCampaignSpend(ctx context.Context, c domain.Campaign) error {
	_, err := t.tx.Exec(ctx, `UPDATE campaigns SET budget_spent = $2, spend_period = $3, updated_at = now() WHERE id = $1`,
		c.ID, c.BudgetSpent, c.SpendPeriod)
	return err
}

func (t *walletTx) AppendEvent(ctx context.Context, e domain.AdEvent) error {
	return appendEvent(ctx, t.tx, e)
}

func (t *walletTx) Increment(ctx context.Context, c domain.Counter, id uuid.UUID, delta int64) (int64, error) {
	return increment(ctx, t.tx, c, id, delta)
}
