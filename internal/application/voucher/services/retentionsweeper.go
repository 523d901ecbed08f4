package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lnpos/voucherd/internal/domain/voucher"
	vo "github.com/lnpos/voucherd/internal/domain/voucher/valueobjects"
	"github.com/lnpos/voucherd/internal/shared/biztime"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

const (
	DefaultCleanupInterval    = 5 * time.Minute
	DefaultClaimedRetention   = 30 * 24 * time.Hour
	DefaultCancelledRetention = 30 * 24 * time.Hour
	DefaultExpiredRetention   = 7 * 24 * time.Hour
	DefaultPurgeBatchSize     = 500

	// gateSlackDivisor lets a sweep in up to interval/10 early, so a ticker
	// firing every CleanupInterval is not turned away by the time spent
	// between a tick and the gate recording it.
	gateSlackDivisor = 10

	// maxBatchesPerStatus bounds one sweep so a large backlog drains over
	// several runs instead of one long one.
	maxBatchesPerStatus = 200
)

// RetentionPolicy configures how often sweeps run and how long terminal
// vouchers are kept.
type RetentionPolicy struct {
	CleanupInterval    time.Duration
	ClaimedRetention   time.Duration
	CancelledRetention time.Duration
	ExpiredRetention   time.Duration
	PurgeBatchSize     int
}

func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		CleanupInterval:    DefaultCleanupInterval,
		ClaimedRetention:   DefaultClaimedRetention,
		CancelledRetention: DefaultCancelledRetention,
		ExpiredRetention:   DefaultExpiredRetention,
		PurgeBatchSize:     DefaultPurgeBatchSize,
	}
}

func (p RetentionPolicy) withDefaults() RetentionPolicy {
	d := DefaultRetentionPolicy()
	if p.CleanupInterval < 0 {
		p.CleanupInterval = d.CleanupInterval
	}
	if p.ClaimedRetention <= 0 {
		p.ClaimedRetention = d.ClaimedRetention
	}
	if p.CancelledRetention <= 0 {
		p.CancelledRetention = d.CancelledRetention
	}
	if p.ExpiredRetention <= 0 {
		p.ExpiredRetention = d.ExpiredRetention
	}
	if p.PurgeBatchSize <= 0 {
		p.PurgeBatchSize = d.PurgeBatchSize
	}
	return p
}

// SweepResult counts the rows touched by one sweep.
type SweepResult struct {
	Expired          int64
	PurgedClaimed    int64
	PurgedCancelled  int64
	PurgedExpired    int64
	Duration         time.Duration
	CompletedPurging bool
}

func (r SweepResult) Purged() int64 {
	return r.PurgedClaimed + r.PurgedCancelled + r.PurgedExpired
}

// RetentionSweeper refreshes the cached status of overdue vouchers and
// deletes terminal vouchers past their retention window. Every statement is
// idempotent, so overlapping sweeps are harmless.
type RetentionSweeper struct {
	repo   voucher.Repository
	gate   Gate
	clock  biztime.Clock
	policy RetentionPolicy
	logger logger.Interface
}

func NewRetentionSweeper(
	repo voucher.Repository,
	gate Gate,
	clock biztime.Clock,
	policy RetentionPolicy,
	logger logger.Interface,
) *RetentionSweeper {
	if gate == nil {
		gate = NewLocalGate()
	}
	if clock == nil {
		clock = biztime.SystemClock()
	}
	return &RetentionSweeper{
		repo:   repo,
		gate:   gate,
		clock:  clock,
		policy: policy.withDefaults(),
		logger: logger,
	}
}

// MaybeRun sweeps if the gate admits it. Failures are logged and never
// returned; callers are read paths that must not fail because of cleanup.
func (s *RetentionSweeper) MaybeRun(ctx context.Context) {
	now := s.clock.Now()

	ok, err := s.gate.Acquire(ctx, now, s.admissionInterval())
	if err != nil {
		s.logger.Warnw("sweep gate unavailable, skipping sweep", "error", err)
		return
	}
	if !ok {
		return
	}

	if _, err := s.sweep(ctx, now); err != nil {
		s.logger.Errorw("retention sweep failed", "error", err)
	}
}

// RunNow sweeps regardless of the gate and reports the outcome.
func (s *RetentionSweeper) RunNow(ctx context.Context) (SweepResult, error) {
	return s.sweep(ctx, s.clock.Now())
}

// LastRun reports when the gate last admitted a sweep. RunNow bypasses the
// gate and is not reflected here.
func (s *RetentionSweeper) LastRun(ctx context.Context) (time.Time, bool, error) {
	return s.gate.LastRun(ctx)
}

// admissionInterval is the minimum spacing the gate enforces between sweeps.
func (s *RetentionSweeper) admissionInterval() time.Duration {
	interval := s.policy.CleanupInterval
	return interval - interval/gateSlackDivisor
}

func (s *RetentionSweeper) Policy() RetentionPolicy {
	return s.policy
}

func (s *RetentionSweeper) sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	start := time.Now()
	var result SweepResult

	expired, err := s.repo.ExpireOverdue(ctx, now)
	if err != nil {
		return result, fmt.Errorf("expire step: %w", err)
	}
	result.Expired = expired

	steps := []struct {
		status    vo.Status
		retention time.Duration
		counter   *int64
	}{
		{vo.StatusClaimed, s.policy.ClaimedRetention, &result.PurgedClaimed},
		{vo.StatusCancelled, s.policy.CancelledRetention, &result.PurgedCancelled},
		{vo.StatusExpired, s.policy.ExpiredRetention, &result.PurgedExpired},
	}

	drained := true
	for _, step := range steps {
		n, complete, err := s.purge(ctx, step.status, now.Add(-step.retention))
		*step.counter = n
		if err != nil {
			return result, fmt.Errorf("purge %s step: %w", step.status, err)
		}
		drained = drained && complete
	}
	result.CompletedPurging = drained
	result.Duration = time.Since(start)

	if result.Expired > 0 || result.Purged() > 0 {
		s.logger.Infow("retention sweep completed",
			"expired", result.Expired,
			"purged_claimed", result.PurgedClaimed,
			"purged_cancelled", result.PurgedCancelled,
			"purged_expired", result.PurgedExpired,
			"duration", result.Duration)
	} else {
		s.logger.Debugw("retention sweep found nothing to do", "duration", result.Duration)
	}

	return result, nil
}

// purge deletes in batches until a short batch signals the backlog is gone.
func (s *RetentionSweeper) purge(ctx context.Context, status vo.Status, cutoff time.Time) (int64, bool, error) {
	var total int64
	for i := 0; i < maxBatchesPerStatus; i++ {
		if err := ctx.Err(); err != nil {
			return total, false, err
		}
		n, err := s.repo.PurgeBatch(ctx, status, cutoff, s.policy.PurgeBatchSize)
		if err != nil {
			return total, false, err
		}
		total += n
		if n < int64(s.policy.PurgeBatchSize) {
			return total, true, nil
		}
	}
	return total, false, nil
}
