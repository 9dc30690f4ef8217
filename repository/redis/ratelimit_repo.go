package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskboard/repository"
)

type rateCounter struct {
	client *redislib.Client
	prefix string
	now    func() time.Time
}

// NewRateCounter creates a Redis-backed fixed window counter.
func NewRateCounter(client *redislib.Client, prefix string) repository.RateCounter {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &rateCounter{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

// Hit increments the counter of the window containing now. The key expires
// together with its window so idle clients leave nothing behind.
func (r *rateCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	if window <= 0 {
		window = time.Minute
	}
	start := r.now().Truncate(window)
	resetAt := start.Add(window)
	redisKey := r.key(key, start)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireAt(ctx, redisKey, resetAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, resetAt, fmt.Errorf("rate counter %s: %w", key, err)
	}
	return incr.Val(), resetAt, nil
}

func (r *rateCounter) key(key string, windowStart time.Time) string {
	return fmt.Sprintf("%s%s:%d", r.prefix, key, windowStart.Unix())
}
