package services

import (
	"context"
	"sync"
	"time"
)

// Gate debounces sweeps. Acquire reports whether the caller should sweep now
// and, if so, records now as the last run. LastRun reports that record; ok is
// false when no sweep has been admitted (or the record has lapsed).
type Gate interface {
	Acquire(ctx context.Context, now time.Time, interval time.Duration) (bool, error)
	LastRun(ctx context.Context) (at time.Time, ok bool, err error)
}

// LocalGate tracks the last sweep in process memory.
type LocalGate struct {
	mu        sync.Mutex
	lastRunAt time.Time
}

func NewLocalGate() *LocalGate {
	return &LocalGate{}
}

func (g *LocalGate) Acquire(_ context.Context, now time.Time, interval time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.lastRunAt.IsZero() && now.Sub(g.lastRunAt) < interval {
		return false, nil
	}
	g.lastRunAt = now
	return true, nil
}

func (g *LocalGate) LastRun(context.Context) (time.Time, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastRunAt, !g.lastRunAt.IsZero(), nil
}
