package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"social-ads/internal/core/domain"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so helpers can run
// inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const uniqueViolation = "23505"

// notFound maps pgx.ErrNoRows to domain.ErrNotFound.
func notFound(err error, what string, id uuid.UUID) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
	}
	return err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// inTx runs fn in a read-committed transaction; row locks taken with
// SELECT ... FOR UPDATE serialize writers.
func inTx(ctx context.Context, db interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}, fn func(tx pgx.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()
	return fn(tx)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func insertAudit(ctx context.Context, q querier, a domain.AuditEntry) error {
	_, err := q.Exec(ctx, `INSERT INTO audit_log (id, entity, entity_id, actor, from_status, to_status, reason, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, string(a.Entity), a.EntityID, a.Actor, a.FromStatus, a.ToStatus, a.Reason, a.CreatedAt)
	return err
}

// counterColumn locates a numeric column bumped by increment. Daily
// counters live in a per-day bucket row keyed by (key, day).
type counterColumn struct {
	table  string
	column string
	key    string
	daily  bool
}

var counterColumns = map[domain.Counter]counterColumn{
	domain.CounterAdImpressions:    {table: "ad_daily_stats", column: "impressions", key: "ad_id", daily: true},
	domain.CounterAdClicks:         {table: "ad_daily_stats", column: "clicks", key: "ad_id", daily: true},
	domain.CounterAdEngagements:    {table: "ad_daily_stats", column: "engagements", key: "ad_id", daily: true},
	domain.CounterAdConversions:    {table: "ad_daily_stats", column: "conversions", key: "ad_id", daily: true},
	domain.CounterPromoRedemptions: {table: "promo_codes", column: "redemption_count", key: "id"},
}

// increment is the single atomic counter primitive. Table and column names
// come from counterColumns only and are quoted with pgx.Identifier.
func increment(ctx context.Context, q querier, c domain.Counter, id uuid.UUID, delta int64) (int64, error) {
	col, ok := counterColumns[c]
	if !ok {
		return 0, &domain.ValidationError{Field: "counter", Reason: "unknown counter " + string(c)}
	}
	table := pgx.Identifier{col.table}.Sanitize()
	column := pgx.Identifier{col.column}.Sanitize()
	key := pgx.Identifier{col.key}.Sanitize()

	var sql string
	if col.daily {
		sql = fmt.Sprintf(`INSERT INTO %[1]s (%[3]s, day, %[2]s) VALUES ($1, (now() AT TIME ZONE 'UTC')::date, $2)
ON CONFLICT (%[3]s, day) DO UPDATE SET %[2]s = %[1]s.%[2]s + EXCLUDED.%[2]s
RETURNING %[2]s`, table, column, key)
	} else {
		sql = fmt.Sprintf(`UPDATE %[1]s SET %[2]s = %[2]s + $2 WHERE %[3]s = $1 RETURNING %[2]s`, table, column, key)
	}
	var value int64
	if err := q.QueryRow(ctx, sql, id, delta).Scan(&value); err != nil {
		return 0, notFound(err, string(c), id)
	}
	return value, nil
}
