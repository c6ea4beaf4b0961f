package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pharmapos/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSequenceCounter_Key(t *testing.T) {
	c := NewRedisSequenceCounter(redis.NewClient(&redis.Options{Addr: "localhost:0"}))
	day := time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "pharmapos:seq:PO:20260309", c.key("PO", day))
	assert.NotEqual(t, c.key("PO", day), c.key("PO", day.Add(time.Minute)))
	assert.NotEqual(t, c.key("PO", day), c.key("SO", day))
}

func TestRedisSequenceCounter_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	_, err := NewRedisSequenceCounter(client).Next(context.Background(), "PO", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "increment sequence pharmapos:seq:PO:")
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient(context.Background(), config.RedisConfig{Host: "127.0.0.1", Port: 1})
	assert.Error(t, err)
}
