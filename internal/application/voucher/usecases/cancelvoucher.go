package usecases

import (
	"context"

	"github.com/lnpos/voucherd/internal/domain/voucher"
	"github.com/lnpos/voucherd/internal/shared/biztime"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

// CancelVoucherUseCase withdraws an unclaimed voucher. Cancelling is final.
type CancelVoucherUseCase struct {
	repo   voucher.Repository
	clock  biztime.Clock
	logger logger.Interface
}

func NewCancelVoucherUseCase(repo voucher.Repository, clock biztime.Clock, logger logger.Interface) *CancelVoucherUseCase {
	return &CancelVoucherUseCase{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

func (uc *CancelVoucherUseCase) Execute(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	if err := checkContext(ctx, "cancel voucher"); err != nil {
		return false, err
	}

	ok, err := uc.repo.Cancel(ctx, id, uc.clock.Now())
	if err != nil {
		uc.logger.Errorw("failed to cancel voucher", "voucher_id", id, "error", err)
		return false, writeFailure("cancel voucher", err)
	}

	if ok {
		uc.logger.Infow("voucher cancelled", "voucher_id", id)
	} else {
		uc.logger.Debugw("voucher not cancellable", "voucher_id", id)
	}
	return ok, nil
}
