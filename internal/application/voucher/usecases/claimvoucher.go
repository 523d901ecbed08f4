package usecases

import (
	"context"

	"github.com/lnpos/voucherd/internal/domain/voucher"
	"github.com/lnpos/voucherd/internal/shared/biztime"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

// ClaimVoucherUseCase takes a voucher for redemption. Under any number of
// concurrent callers at most one receives true.
type ClaimVoucherUseCase struct {
	repo   voucher.Repository
	clock  biztime.Clock
	logger logger.Interface
}

func NewClaimVoucherUseCase(repo voucher.Repository, clock biztime.Clock, logger logger.Interface) *ClaimVoucherUseCase {
	return &ClaimVoucherUseCase{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

func (uc *ClaimVoucherUseCase) Execute(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	if err := checkContext(ctx, "claim voucher"); err != nil {
		return false, err
	}

	ok, err := uc.repo.Claim(ctx, id, uc.clock.Now())
	if err != nil {
		uc.logger.Errorw("failed to claim voucher", "voucher_id", id, "error", err)
		return false, writeFailure("claim voucher", err)
	}

	if ok {
		uc.logger.Infow("voucher claimed", "voucher_id", id)
	} else {
		uc.logger.Debugw("voucher not claimable", "voucher_id", id)
	}
	return ok, nil
}
