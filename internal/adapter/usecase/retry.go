package usecase

import (
	"context"
	"time"
)

// retryRead runs an idempotent read up to 1+retries times, sleeping
// backoff*attempt between tries. Context errors end the loop at once.
// Writes must never go through here.
func retryRead[T any](ctx context.Context, retries int, backoff time.Duration, read func(context.Context) (T, error)) (T, error) {
	var (
		out T
		err error
	)
	for attempt := 0; ; attempt++ {
		out, err = read(ctx)
		if err == nil || ctx.Err() != nil || attempt >= retries {
			return out, err
		}
		timer := time.NewTimer(backoff * time.Duration(attempt+1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return out, err
		case <-timer.C:
		}
	}
}
