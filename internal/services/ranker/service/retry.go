package service

import (
	"context"
	"math/rand"
	"time"

	"rankbot/internal/adapters/groups"
	perr "rankbot/internal/platform/errors"
	"rankbot/internal/platform/logger"
)

const (
	backoffCap      = 30 * time.Second
	defaultBase     = 500 * time.Millisecond
	defaultCooldown = 60 * time.Second
)

// callWithRetry runs fn up to MaxRetries times. Rate limits wait for the
// remote's hint (or the configured cooldown); transient failures get
// exponential backoff with jitter. Non-retryable errors return immediately
func (s *Service) callWithRetry(ctx context.Context, op string, fn func() error) error {
	attempts := max(s.Cfg.MaxRetries, 1)
	base := s.Cfg.RetryBase
	if base <= 0 {
		base = defaultBase
	}

	var last error
	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		last = err

		if !perr.Retryable(err) {
			return last
		}
		if i == attempts-1 {
			break
		}

		var wait time.Duration
		if perr.IsCode(err, perr.ErrorCodeTooManyRequests) {
			wait = groups.RetryAfterOf(err)
			if wait <= 0 {
				wait = s.Cfg.RateLimitCooldown
			}
			if wait <= 0 {
				wait = defaultCooldown
			}
		} else {
			d := min(base<<i, backoffCap)
			wait = d/2 + time.Duration(rand.Int63n(int64(d/2)))
		}

		logger.C(ctx).Warn().
			Str("op", op).
			Int("attempt", i+1).
			Dur("retry_in", wait).
			Err(err).
			Msg("remote call failed, retrying")
		if se := s.sleep(ctx, wait); se != nil {
			return last
		}
	}
	return last
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
