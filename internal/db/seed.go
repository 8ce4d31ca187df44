package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"social-ads/internal/core/domain"
)

// Fixed ids keep Seed idempotent.
var (
	SeedAdvertiserID = uuid.MustParse("6f1d0c3e-58a4-4c53-9a1f-3b4f1f6d0a01")
	SeedWalletID     = uuid.MustParse("6f1d0c3e-58a4-4c53-9a1f-3b4f1f6d0a02")
	SeedCampaignID   = uuid.MustParse("6f1d0c3e-58a4-4c53-9a1f-3b4f1f6d0a03")
	SeedAdGroupID    = uuid.MustParse("6f1d0c3e-58a4-4c53-9a1f-3b4f1f6d0a04")
	SeedPromoCodeID  = uuid.MustParse("6f1d0c3e-58a4-4c53-9a1f-3b4f1f6d0a05")
)

const seedBalance = int64(500000)

// Seed inserts a demo advertiser with a funded wallet, one active CPC
// campaign with three live ads and a promo code. Running it twice is a
// no-op.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	return pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `INSERT INTO advertisers (id, user_id, status, verification_status)
VALUES ($1, 'demo-user', 'ACTIVE', 'VERIFIED') ON CONFLICT DO NOTHING`, SeedAdvertiserID)
		if err != nil {
			return fmt.Errorf("seed advertiser: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		if _, err = tx.Exec(ctx, `INSERT INTO wallet_accounts (id, advertiser_id, balance)
VALUES ($1, $2, $3)`, SeedWalletID, SeedAdvertiserID, seedBalance); err != nil {
			return fmt.Errorf("seed wallet: %w", err)
		}
		// the opening balance is backed by a completed top-up so Verify holds
		if _, err = tx.Exec(ctx, `INSERT INTO wallet_transactions
    (id, wallet_id, type, amount, balance_before, balance_after, status, idempotency_key, description, actor)
VALUES ($1, $2, $3, $4, 0, $4, $5, 'seed:topup', 'demo top-up', 'seed')`,
			uuid.New(), SeedWalletID, string(domain.TxTopUp), seedBalance, string(domain.TxCompleted)); err != nil {
			return fmt.Errorf("seed top-up: %w", err)
		}

		now := time.Now().UTC()
		if _, err = tx.Exec(ctx, `INSERT INTO campaigns
    (id, advertiser_id, name, objective, budget_type, budget_amount, status, start_date, end_date)
VALUES ($1, $2, 'Demo traffic', $3, $4, 100000, $5, $6, $7)`,
			SeedCampaignID, SeedAdvertiserID, string(domain.ObjectiveTraffic), string(domain.BudgetDaily),
			string(domain.CampaignActive), now.AddDate(0, 0, -1), now.AddDate(0, 1, 0)); err != nil {
			return fmt.Errorf("seed campaign: %w", err)
		}

		targeting, err := json.Marshal(domain.Targeting{
			Interests: []string{"tech", "gaming", "music"},
			Countries: []string{"US", "GB", "AM"},
		})
		if err != nil {
			return err
		}
		if _, err = tx.Exec(ctx, `INSERT INTO ad_groups
    (id, campaign_id, name, bid_amount, billing_model, targeting,
     frequency_cap_impressions, frequency_cap_period_hours, placements)
VALUES ($1, $2, 'Demo group', 50, $3, $4, 5, 24, $5)`,
			SeedAdGroupID, SeedCampaignID, string(domain.BillingCPC), targeting,
			[]string{"feed", "stories"}); err != nil {
			return fmt.Errorf("seed ad group: %w", err)
		}

		for i := 1; i <= 3; i++ {
			creative, err := json.Marshal(domain.Creative{
				Headline:       fmt.Sprintf("Demo ad %d", i),
				Description:    "Seeded creative",
				MediaURL:       fmt.Sprintf("https://cdn.example.com/demo/%d.jpg", i),
				CallToAction:   "Learn more",
				DestinationURL: fmt.Sprintf("https://example.com/landing/%d", i),
			})
			if err != nil {
				return err
			}
			if _, err = tx.Exec(ctx, `INSERT INTO ads (id, ad_group_id, campaign_id, status, creative)
VALUES ($1, $2, $3, $4, $5)`, uuid.New(), SeedAdGroupID, SeedCampaignID, string(domain.AdActive), creative); err != nil {
				return fmt.Errorf("seed ad %d: %w", i, err)
			}
		}

		if _, err = tx.Exec(ctx, `INSERT INTO promo_codes (id, code, amount, usage_limit, valid_until)
VALUES ($1, 'WELCOME50', 5000, 1000, $2)`, SeedPromoCodeID, now.AddDate(1, 0, 0)); err != nil {
			return fmt.Errorf("seed promo code: %w", err)
		}
		return nil
	})
}
