package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
)

// EventRepository implements port.EventRepository. It also serves as the
// port.ImpressionCounter when no Redis counter is configured.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// appendEvent inserts e once; a second insert with the same id reports
// domain.ErrDuplicateEvent.
func appendEvent(ctx context.Context, q querier, e domain.AdEvent) error {
	tag, err := q.Exec(ctx, `INSERT INTO ad_events
    (id, ad_id, ad_group_id, campaign_id, user_id, event_type, cost_amount, placement, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO NOTHING`,
		e.ID, e.AdID, e.AdGroupID, e.CampaignID, e.UserID, string(e.EventType), e.CostAmount, e.Placement, e.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateEvent
	}
	return nil
}

func (r *EventRepository) AppendEvent(ctx context.Context, e domain.AdEvent) error {
	return appendEvent(ctx, r.pool, e)
}

func (r *EventRepository) GetEvent(ctx context.Context, id uuid.UUID) (*domain.AdEvent, error) {
	var e domain.AdEvent
	err := r.pool.QueryRow(ctx, `SELECT id, ad_id, ad_group_id, campaign_id, user_id, event_type, cost_amount, placement, created_at
FROM ad_events WHERE id = $1`, id).
		Scan(&e.ID, &e.AdID, &e.AdGroupID, &e.CampaignID, &e.UserID, &e.EventType, &e.CostAmount, &e.Placement, &e.CreatedAt)
	if err != nil {
		return nil, notFound(err, "event", id)
	}
	return &e, nil
}

func (r *EventRepository) Increment(ctx context.Context, c domain.Counter, id uuid.UUID, delta int64) (int64, error) {
	return increment(ctx, r.pool, c, id, delta)
}

// GetStats returns aggregated events and cost for campaigns in a period. A
// zero To means now.
func (r *EventRepository) GetStats(ctx context.Context, req port.StatsReq) (*port.StatsResp, error) {
	to := req.To
	if to.IsZero() {
		to = time.Now()
	}
	args := []any{req.From, to}
	query := `SELECT
    count(*) FILTER (WHERE event_type = 'IMPRESSION'),
    count(*) FILTER (WHERE event_type = 'CLICK'),
    count(*) FILTER (WHERE event_type = 'ENGAGEMENT'),
    count(*) FILTER (WHERE event_type = 'CONVERSION'),
    COALESCE(sum(cost_amount), 0)::bigint
FROM ad_events
WHERE created_at >= $1 AND created_at <= $2`
	if req.CampaignID != nil {
		query += ` AND campaign_id = $3`
		args = append(args, *req.CampaignID)
	}
	var s port.StatsResp
	err := r.pool.QueryRow(ctx, query, args...).Scan(&s.Impressions, &s.Clicks, &s.Engagements, &s.Conversions, &s.Cost)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *EventRepository) CountImpressions(ctx context.Context, adGroupID uuid.UUID, userID string, since time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM ad_events
WHERE event_type = 'IMPRESSION' AND ad_group_id = $1 AND user_id = $2 AND created_at >= $3`,
		adGroupID, userID, since).Scan(&n)
	return n, err
}

// RecordImpression is a no-op: CountImpressions reads ad_events directly.
func (r *EventRepository) RecordImpression(context.Context, domain.AdEvent) error { return nil }
