package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
)

const (
	adColumns = `a.id, a.ad_group_id, a.campaign_id, a.status, a.creative, a.rejection_reason, a.reopened,
a.created_at, a.updated_at`
	adGroupColumns = `g.id, g.campaign_id, g.name, g.bid_amount, g.billing_model, g.targeting,
g.frequency_cap_impressions, g.frequency_cap_period_hours, g.placements, g.created_at, g.updated_at`
)

// AdRepository implements port.AdRepository and port.CandidateRepository
// using pgxpool for PostgreSQL.
type AdRepository struct {
	pool *pgxpool.Pool
}

// NewAdRepository returns a new repository instance.
func NewAdRepository(pool *pgxpool.Pool) *AdRepository {
	return &AdRepository{pool: pool}
}

// adRow holds the JSON columns of an ad and an ad group until they are
// decoded.
type adRow struct {
	ad           domain.Ad
	group        domain.AdGroup
	creativeRaw  []byte
	targetingRaw []byte
}

func (r *adRow) adDest() []any {
	a := &r.ad
	return []any{&a.ID, &a.AdGroupID, &a.CampaignID, &a.Status, &r.creativeRaw, &a.RejectionReason, &a.Reopened, &a.CreatedAt, &a.UpdatedAt}
}

func (r *adRow) groupDest() []any {
	g := &r.group
	return []any{
		&g.ID, &g.CampaignID, &g.Name, &g.BidAmount, &g.BillingModel, &r.targetingRaw,
		&g.FrequencyCapImpressions, &g.FrequencyCapPeriodHours, &g.Placements, &g.CreatedAt, &g.UpdatedAt,
	}
}

func (r *adRow) decode() error {
	if r.creativeRaw != nil {
		if err := json.Unmarshal(r.creativeRaw, &r.ad.Creative); err != nil {
			return fmt.Errorf("decode creative of ad %s: %w", r.ad.ID, err)
		}
	}
	if r.targetingRaw != nil {
		if err := json.Unmarshal(r.targetingRaw, &r.group.Targeting); err != nil {
			return fmt.Errorf("decode targeting of ad group %s: %w", r.group.ID, err)
		}
	}
	return nil
}

// EligibleCandidates returns approved or active ads of active campaigns that
// still have budget and may fill the placement, together with their stats
// since statsSince.
func (r *AdRepository) EligibleCandidates(ctx context.Context, placement string, statsSince time.Time) ([]port.AdCandidate, error) {
	query := `
        SELECT ` + adColumns + `, ` + adGroupColumns + `, ` + campaignColumns + `,
            COALESCE(s.impressions, 0), COALESCE(s.clicks, 0), COALESCE(s.engagements, 0)
        FROM ads a
        JOIN ad_groups g ON g.id = a.ad_group_id
        JOIN campaigns c ON c.id = a.campaign_id
        LEFT JOIN LATERAL (
            SELECT sum(impressions)::bigint AS impressions,
                   sum(clicks)::bigint      AS clicks,
                   sum(engagements)::bigint AS engagements
            FROM ad_daily_stats
            WHERE ad_id = a.id AND day >= $2::date
        ) s ON TRUE
        WHERE c.status = 'ACTIVE'
          AND a.status IN ('APPROVED', 'ACTIVE')
          AND (c.start_date IS NULL OR c.start_date <= now())
          AND (c.end_date IS NULL OR c.end_date >= now())
          AND (c.budget_spent < c.budget_amount
               OR (c.budget_type = 'DAILY' AND c.spend_period < (now() AT TIME ZONE 'UTC')::date))
          AND ($1 = '' OR cardinality(g.placements) = 0
               OR EXISTS (SELECT 1 FROM unnest(g.placements) p WHERE lower(p) = lower($1)))`
	rows, err := r.pool.Query(ctx, query, placement, statsSince.UTC())
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (port.AdCandidate, error) {
		var (
			raw  adRow
			c    domain.Campaign
			perf domain.AdPerformance
		)
		dest := append(raw.adDest(), raw.groupDest()...)
		dest = append(dest, campaignDest(&c)...)
		dest = append(dest, &perf.Impressions, &perf.Clicks, &perf.Engagements)
		if err := row.Scan(dest...); err != nil {
			return port.AdCandidate{}, err
		}
		if err := raw.decode(); err != nil {
			return port.AdCandidate{}, err
		}
		return port.AdCandidate{Ad: raw.ad, AdGroup: raw.group, Campaign: c, Performance: perf}, nil
	})
}

func (r *AdRepository) GetAdGroup(ctx context.Context, id uuid.UUID) (*domain.AdGroup, error) {
	var raw adRow
	err := r.pool.QueryRow(ctx, `SELECT `+adGroupColumns+` FROM ad_groups g WHERE g.id = $1`, id).Scan(raw.groupDest()...)
	if err != nil {
		return nil, notFound(err, "ad group", id)
	}
	if err = raw.decode(); err != nil {
		return nil, err
	}
	return &raw.group, nil
}

func (r *AdRepository) CreateAdGroup(ctx context.Context, g domain.AdGroup) error {
	targeting, err := json.Marshal(g.Targeting)
	if err != nil {
		return err
	}
	placements := g.Placements
	if placements == nil {
		placements = []string{}
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO ad_groups
    (id, campaign_id, name, bid_amount, billing_model, targeting, frequency_cap_impressions,
     frequency_cap_period_hours, placements, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		g.ID, g.CampaignID, g.Name, g.BidAmount, string(g.BillingModel), targeting,
		g.FrequencyCapImpressions, g.FrequencyCapPeriodHours, placements, g.CreatedAt, g.UpdatedAt)
	return err
}

func (r *AdRepository) GetAd(ctx context.Context, id uuid.UUID) (*domain.Ad, error) {
	var raw adRow
	err := r.pool.QueryRow(ctx, `SELECT `+adColumns+` FROM ads a WHERE a.id = $1`, id).Scan(raw.adDest()...)
	if err != nil {
		return nil, notFound(err, "ad", id)
	}
	if err = raw.decode(); err != nil {
		return nil, err
	}
	return &raw.ad, nil
}

func (r *AdRepository) CreateAd(ctx context.Context, ad domain.Ad) error {
	creative, err := json.Marshal(ad.Creative)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO ads
    (id, ad_group_id, campaign_id, status, creative, rejection_reason, reopened, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		ad.ID, ad.AdGroupID, ad.CampaignID, string(ad.Status), creative, ad.RejectionReason, ad.Reopened, ad.CreatedAt, ad.UpdatedAt)
	return err
}

func (r *AdRepository) ListCampaignAds(ctx context.Context, campaignID uuid.UUID) ([]domain.Ad, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+adColumns+` FROM ads a WHERE a.campaign_id = $1 ORDER BY a.created_at`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Ad, error) {
		var raw adRow
		if err := row.Scan(raw.adDest()...); err != nil {
			return domain.Ad{}, err
		}
		if err := raw.decode(); err != nil {
			return domain.Ad{}, err
		}
		return raw.ad, nil
	})
}

// UpdateAdStatus is a compare-and-set on the status column that also writes
// the rejection reason and reopened flag.
func (r *AdRepository) UpdateAdStatus(ctx context.Context, ad domain.Ad, from domain.AdStatus, audit domain.AuditEntry) (bool, error) {
	applied := false
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE ads
SET status = $3, rejection_reason = $4, reopened = $5, updated_at = $6
WHERE id = $1 AND status = $2`,
			ad.ID, string(from), string(ad.Status), ad.RejectionReason, ad.Reopened, ad.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		applied = true
		return insertAudit(ctx, tx, audit)
	})
	return applied, err
}
