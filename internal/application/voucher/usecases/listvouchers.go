package usecases

import (
	"context"

	"github.com/lnpos/voucherd/internal/domain/voucher"
	"github.com/lnpos/voucherd/internal/shared/biztime"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

type ListVouchersUseCase struct {
	repo    voucher.Repository
	sweeper Sweeper
	clock   biztime.Clock
	logger  logger.Interface
}

func NewListVouchersUseCase(repo voucher.Repository, sweeper Sweeper, clock biztime.Clock, logger logger.Interface) *ListVouchersUseCase {
	return &ListVouchersUseCase{
		repo:    repo,
		sweeper: sweeperOrNoop(sweeper),
		clock:   clock,
		logger:  logger,
	}
}

// Execute returns every stored voucher, newest first, with status derived at
// the current instant.
func (uc *ListVouchersUseCase) Execute(ctx context.Context) ([]*voucher.Voucher, error) {
	uc.sweeper.MaybeRun(ctx)

	vouchers, err := uc.repo.List(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list vouchers", "error", err)
		return nil, readFailure("list vouchers", err)
	}

	now := uc.clock.Now()
	for _, v := range vouchers {
		v.RefreshStatus(now)
	}
	return vouchers, nil
}
