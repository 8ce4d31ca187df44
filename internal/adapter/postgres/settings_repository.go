package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"social-ads/internal/core/domain"
)

// SettingsRepository reads runtime overrides from platform_settings.
// Unknown keys are ignored.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

func (r *SettingsRepository) LoadSettings(ctx context.Context, base domain.Settings) (domain.Settings, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM platform_settings`)
	if err != nil {
		return base, err
	}
	type kv struct{ key, value string }
	pairs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (kv, error) {
		var p kv
		err := row.Scan(&p.key, &p.value)
		return p, err
	})
	if err != nil {
		return base, err
	}
	out := base
	for _, p := range pairs {
		if err := applySetting(&out, p.key, p.value); err != nil {
			return base, err
		}
	}
	return out, nil
}

func applySetting(s *domain.Settings, key, value string) error {
	var err error
	switch key {
	case "auction_timeout_ms":
		s.AuctionTimeout, err = millis(value)
	case "retry_backoff_ms":
		s.RetryBackoff, err = millis(value)
	case "candidate_retries":
		s.CandidateRetries, err = strconv.Atoi(value)
	case "quality_window_days":
		s.QualityWindowDays, err = strconv.Atoi(value)
	case "second_price":
		s.SecondPrice, err = strconv.ParseBool(value)
	case "auto_activate":
		s.AutoActivate, err = strconv.ParseBool(value)
	}
	if err != nil {
		return fmt.Errorf("platform setting %s=%q: %w", key, value, err)
	}
	return nil
}

func millis(v string) (time.Duration, error) {
	n, err := strconv.Atoi(v)
	return time.Duration(n) * time.Millisecond, err
}
