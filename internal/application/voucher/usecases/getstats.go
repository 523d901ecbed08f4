package usecases

import (
	"context"

	"github.com/lnpos/voucherd/internal/domain/voucher"
	"github.com/lnpos/voucherd/internal/shared/biztime"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

type GetStatsUseCase struct {
	repo    voucher.Repository
	sweeper Sweeper
	clock   biztime.Clock
	logger  logger.Interface
}

func NewGetStatsUseCase(repo voucher.Repository, sweeper Sweeper, clock biztime.Clock, logger logger.Interface) *GetStatsUseCase {
	return &GetStatsUseCase{
		repo:    repo,
		sweeper: sweeperOrNoop(sweeper),
		clock:   clock,
		logger:  logger,
	}
}

// Execute buckets every voucher by its derived status, so the buckets always
// add up to Total.
func (uc *GetStatsUseCase) Execute(ctx context.Context) (voucher.Stats, error) {
	uc.sweeper.MaybeRun(ctx)

	stats, err := uc.repo.Stats(ctx, uc.clock.Now())
	if err != nil {
		uc.logger.Errorw("failed to compute voucher stats", "error", err)
		return voucher.Stats{}, readFailure("compute voucher stats", err)
	}
	return stats, nil
}
