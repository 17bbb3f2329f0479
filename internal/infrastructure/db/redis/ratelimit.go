package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "ratelimit"

// RateLimitStore is a fixed-window request counter shared by every API
// instance pointing at the same Redis. It satisfies echo's RateLimiterStore.
// Key format: ratelimit:<identifier>:<window_start_unix>
type RateLimitStore struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRateLimitStore allows limit requests per identifier in each window.
func NewRateLimitStore(client *redis.Client, limit int, window time.Duration) *RateLimitStore {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RateLimitStore{
		client: client,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// Allow increments the caller's counter for the current window and reports
// whether it is still within the limit.
func (s *RateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	key := s.key(identifier)
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return incr.Val() <= s.limit, nil
}

func (s *RateLimitStore) key(identifier string) string {
	start := s.now().Truncate(s.window)
	return fmt.Sprintf("%s:%s:%d", rateLimitPrefix, identifier, start.Unix())
}
