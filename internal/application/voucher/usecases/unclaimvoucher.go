package usecases

import (
	"context"

	"github.com/lnpos/voucherd/internal/domain/voucher"
	"github.com/lnpos/voucherd/internal/shared/biztime"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

// UnclaimVoucherUseCase rolls a claim back after the payout failed. A claimed
// voucher whose expiry has passed stays claimed.
type UnclaimVoucherUseCase struct {
	repo   voucher.Repository
	clock  biztime.Clock
	logger logger.Interface
}

func NewUnclaimVoucherUseCase(repo voucher.Repository, clock biztime.Clock, logger logger.Interface) *UnclaimVoucherUseCase {
	return &UnclaimVoucherUseCase{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

func (uc *UnclaimVoucherUseCase) Execute(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	if err := checkContext(ctx, "unclaim voucher"); err != nil {
		return false, err
	}

	ok, err := uc.repo.Unclaim(ctx, id, uc.clock.Now())
	if err != nil {
		uc.logger.Errorw("failed to unclaim voucher", "voucher_id", id, "error", err)
		return false, writeFailure("unclaim voucher", err)
	}

	if ok {
		uc.logger.Warnw("voucher claim rolled back", "voucher_id", id)
	} else {
		uc.logger.Infow("voucher claim not rolled back", "voucher_id", id)
	}
	return ok, nil
}
