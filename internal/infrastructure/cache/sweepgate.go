package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lnpos/voucherd/internal/shared/logger"
)

const sweepGateKeyPrefix = "voucherd:sweep:"

// RedisSweepGate lets one instance in a fleet sweep per interval. The first
// caller to SET NX the key wins; the key expires after the interval.
type RedisSweepGate struct {
	client redis.UniversalClient
	key    string
	logger logger.Interface
}

// NewRedisSweepGate scopes the gate by deployment name so that environments
// sharing a redis do not suppress each other.
func NewRedisSweepGate(client redis.UniversalClient, deployment string, log logger.Interface) *RedisSweepGate {
	if deployment == "" {
		deployment = "default"
	}
	return &RedisSweepGate{
		client: client,
		key:    sweepGateKeyPrefix + deployment,
		logger: log,
	}
}

// Acquire reports whether the caller should sweep now.
func (g *RedisSweepGate) Acquire(ctx context.Context, now time.Time, interval time.Duration) (bool, error) {
	if interval <= 0 {
		return true, nil
	}

	ok, err := g.client.SetNX(ctx, g.key, now.UTC().Format(time.RFC3339Nano), interval).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sweep gate: %w", err)
	}

	if ok {
		g.logger.Debugw("sweep gate acquired", "key", g.key, "interval", interval)
	}
	return ok, nil
}

// LastRun returns the time the gate was last taken, if it is still held.
func (g *RedisSweepGate) LastRun(ctx context.Context) (time.Time, bool, error) {
	raw, err := g.client.Get(ctx, g.key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read sweep gate: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("malformed sweep gate value %q: %w", raw, err)
	}
	return t, true, nil
}

// NewRedisClient builds a client from address settings and verifies it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}
