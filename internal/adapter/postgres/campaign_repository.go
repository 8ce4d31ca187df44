package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"social-ads/internal/core/domain"
)

const campaignColumns = `c.id, c.advertiser_id, c.name, c.objective, c.budget_type, c.budget_amount,
c.budget_spent, c.spend_period, c.status, c.start_date, c.end_date, c.created_at, c.updated_at`

func scanCampaign(row pgx.Row) (domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(campaignDest(&c)...)
	return c, err
}

func campaignDest(c *domain.Campaign) []any {
	return []any{
		&c.ID, &c.AdvertiserID, &c.Name, &c.Objective, &c.BudgetType, &c.BudgetAmount,
		&c.BudgetSpent, &c.SpendPeriod, &c.Status, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt,
	}
}

// CampaignRepository implements port.CampaignRepository.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

func (r *CampaignRepository) GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns c WHERE c.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "campaign", id)
	}
	return &c, nil
}

func (r *CampaignRepository) CreateCampaign(ctx context.Context, c domain.Campaign) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO campaigns
    (id, advertiser_id, name, objective, budget_type, budget_amount, budget_spent, spend_period,
     status, start_date, end_date, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		c.ID, c.AdvertiserID, c.Name, string(c.Objective), string(c.BudgetType), c.BudgetAmount, c.BudgetSpent,
		c.SpendPeriod, string(c.Status), c.StartDate, c.EndDate, c.CreatedAt, c.UpdatedAt)
	return err
}

// UpdateCampaignStatus is a compare-and-set on the status column. The audit
// row is written only when the update applied.
func (r *CampaignRepository) UpdateCampaignStatus(ctx context.Context, id uuid.UUID, from, to domain.CampaignStatus, audit domain.AuditEntry) (bool, error) {
	applied := false
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE campaigns SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
			id, string(from), string(to), audit.CreatedAt)
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

func (r *CampaignRepository) ListOrphanedCampaigns(ctx context.Context, limit int) ([]domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+campaignColumns+`
FROM campaigns c
WHERE c.status IN ('DRAFT', 'PENDING_REVIEW')
  AND EXISTS (SELECT 1 FROM ads a WHERE a.campaign_id = c.id AND a.status IN ('APPROVED', 'ACTIVE'))
ORDER BY c.created_at
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		return scanCampaign(row)
	})
}

func (r *CampaignRepository) GetAdvertiser(ctx context.Context, id uuid.UUID) (*domain.Advertiser, error) {
	var a domain.Advertiser
	err := r.pool.QueryRow(ctx, `SELECT id, user_id, status, verification_status, created_at FROM advertisers WHERE id = $1`, id).
		Scan(&a.ID, &a.UserID, &a.Status, &a.VerificationStatus, &a.CreatedAt)
	if err != nil {
		return nil, notFound(err, "advertiser", id)
	}
	return &a, nil
}
