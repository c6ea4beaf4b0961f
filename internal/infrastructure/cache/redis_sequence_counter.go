package cache

import (
	"context"
	"fmt"
	"time"

	apptrade "github.com/pharmapos/backend/internal/application/trade"
	"github.com/pharmapos/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultSequenceKeyPrefix = "pharmapos:seq:"
	// a day's counter must outlive the day in every timezone
	defaultSequenceTTL = 48 * time.Hour
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// RedisSequenceCounter implements the order number sequence with one INCR
// key per kind and day. Keys expire after two days, so counters never need
// cleaning up.
type RedisSequenceCounter struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSequenceCounter creates a counter on client
func NewRedisSequenceCounter(client redis.UniversalClient) *RedisSequenceCounter {
	return &RedisSequenceCounter{
		client:    client,
		keyPrefix: defaultSequenceKeyPrefix,
		ttl:       defaultSequenceTTL,
	}
}

// Next atomically increments and returns the counter of kind on day.
// The first call of a day returns 1.
func (c *RedisSequenceCounter) Next(ctx context.Context, kind string, day time.Time) (int64, error) {
	key := c.key(kind, day)

	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment sequence %s: %w", key, err)
	}
	return incr.Val(), nil
}

func (c *RedisSequenceCounter) key(kind string, day time.Time) string {
	return c.keyPrefix + kind + ":" + day.Format("20060102")
}

var _ apptrade.SequenceCounter = (*RedisSequenceCounter)(nil)
