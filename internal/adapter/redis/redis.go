package redis

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"social-ads/internal/config/configs"
)

// Connect builds a client from either a redis:// URL or a bare host:port and
// verifies it with a PING.
func Connect(ctx context.Context, cfg configs.Redis) (*goredis.Client, error) {
	var opt *goredis.Options
	if strings.HasPrefix(cfg.Addr, "redis://") || strings.HasPrefix(cfg.Addr, "rediss://") {
		parsed, err := goredis.ParseURL(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opt = parsed
	} else {
		opt = &goredis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	}

	client := goredis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
