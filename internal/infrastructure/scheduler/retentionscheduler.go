// Package scheduler runs background maintenance loops.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/lnpos/voucherd/internal/shared/logger"
)

const defaultRetentionInterval = 5 * time.Minute

// Sweeper is the retention work the scheduler drives. Debouncing stays in the
// sweeper's gate, so ticking here never sweeps more often than read paths do.
type Sweeper interface {
	MaybeRun(ctx context.Context)
}

// RetentionScheduler keeps retention running on instances that see no read
// traffic.
type RetentionScheduler struct {
	sweeper  Sweeper
	logger   logger.Interface
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	interval time.Duration
}

func NewRetentionScheduler(sweeper Sweeper, interval time.Duration, logger logger.Interface) *RetentionScheduler {
	if interval <= 0 {
		interval = defaultRetentionInterval
	}
	return &RetentionScheduler{
		sweeper:  sweeper,
		logger:   logger,
		stopChan: make(chan struct{}),
		interval: interval,
	}
}

// Start launches the loop and returns immediately.
func (s *RetentionScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting retention scheduler", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop ends the loop and waits for an in-flight sweep. Safe to call more than once.
func (s *RetentionScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping retention scheduler")
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("retention scheduler stopped")
	})
}

func (s *RetentionScheduler) run(ctx context.Context) {
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("retention scheduler stopped due to context cancellation")
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *RetentionScheduler) tick(ctx context.Context) {
	startTime := time.Now()
	s.sweeper.MaybeRun(ctx)
	s.logger.Debugw("retention tick finished", "duration", time.Since(startTime))
}
