package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnpos/voucherd/internal/shared/logger"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisSweepGate_Acquire(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	a := NewRedisSweepGate(client, "prod", logger.NewNopLogger())
	b := NewRedisSweepGate(client, "prod", logger.NewNopLogger())

	ok, err := a.Acquire(ctx, now, 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx, now.Add(time.Minute), 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second instance must wait for the interval")

	last, held, err := b.LastRun(ctx)
	require.NoError(t, err)
	assert.True(t, held)
	assert.True(t, last.Equal(now))

	mr.FastForward(5 * time.Minute)

	ok, err = b.Acquire(ctx, now.Add(5*time.Minute), 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisSweepGate_ScopedByDeployment(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()
	now := time.Now().UTC()

	ok, err := NewRedisSweepGate(client, "staging", logger.NewNopLogger()).Acquire(ctx, now, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewRedisSweepGate(client, "", logger.NewNopLogger()).Acquire(ctx, now, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisSweepGate_ZeroIntervalAlwaysRuns(t *testing.T) {
	_, client := setupTestRedis(t)
	g := NewRedisSweepGate(client, "x", logger.NewNopLogger())

	for i := 0; i < 3; i++ {
		ok, err := g.Acquire(context.Background(), time.Now(), 0)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestRedisSweepGate_Unavailable(t *testing.T) {
	mr, client := setupTestRedis(t)
	mr.Close()

	_, err := NewRedisSweepGate(client, "x", logger.NewNopLogger()).Acquire(context.Background(), time.Now(), time.Minute)
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr, _ := setupTestRedis(t)

	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRedisClient(context.Background(), "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
