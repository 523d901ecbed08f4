package usecases

import (
	"context"

	"github.com/lnpos/voucherd/internal/domain/voucher"
	"github.com/lnpos/voucherd/internal/shared/biztime"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

// GetVoucherUseCase returns a voucher only while it can still be redeemed.
type GetVoucherUseCase struct {
	repo    voucher.Repository
	sweeper Sweeper
	clock   biztime.Clock
	logger  logger.Interface
}

func NewGetVoucherUseCase(repo voucher.Repository, sweeper Sweeper, clock biztime.Clock, logger logger.Interface) *GetVoucherUseCase {
	return &GetVoucherUseCase{
		repo:    repo,
		sweeper: sweeperOrNoop(sweeper),
		clock:   clock,
		logger:  logger,
	}
}

// Execute returns nil, nil for unknown, claimed, cancelled or expired vouchers.
func (uc *GetVoucherUseCase) Execute(ctx context.Context, id string) (*voucher.Voucher, error) {
	uc.sweeper.MaybeRun(ctx)

	if id == "" {
		return nil, nil
	}

	now := uc.clock.Now()
	v, err := uc.repo.GetRedeemable(ctx, id, now)
	if err != nil {
		uc.logger.Errorw("failed to get voucher", "voucher_id", id, "error", err)
		return nil, readFailure("get voucher", err)
	}
	if v == nil {
		return nil, nil
	}

	v.RefreshStatus(now)
	return v, nil
}

// GetVoucherWithStatusUseCase returns a voucher in any state with its status
// derived at the current instant.
type GetVoucherWithStatusUseCase struct {
	repo   voucher.Repository
	clock  biztime.Clock
	logger logger.Interface
}

func NewGetVoucherWithStatusUseCase(repo voucher.Repository, clock biztime.Clock, logger logger.Interface) *GetVoucherWithStatusUseCase {
	return &GetVoucherWithStatusUseCase{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

func (uc *GetVoucherWithStatusUseCase) Execute(ctx context.Context, id string) (*voucher.Voucher, error) {
	if id == "" {
		return nil, nil
	}

	v, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		uc.logger.Errorw("failed to get voucher", "voucher_id", id, "error", err)
		return nil, readFailure("get voucher", err)
	}
	if v == nil {
		return nil, nil
	}

	v.RefreshStatus(uc.clock.Now())
	return v, nil
}
