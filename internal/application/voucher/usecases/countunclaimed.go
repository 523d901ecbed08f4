package usecases

import (
	"context"
	"strings"

	"github.com/lnpos/voucherd/internal/domain/voucher"
	"github.com/lnpos/voucherd/internal/shared/biztime"
	apperrors "github.com/lnpos/voucherd/internal/shared/errors"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

// CountUnclaimedUseCase counts the vouchers of a wallet that still count
// against its cap.
type CountUnclaimedUseCase struct {
	repo   voucher.Repository
	clock  biztime.Clock
	logger logger.Interface
}

func NewCountUnclaimedUseCase(repo voucher.Repository, clock biztime.Clock, logger logger.Interface) *CountUnclaimedUseCase {
	return &CountUnclaimedUseCase{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

func (uc *CountUnclaimedUseCase) Execute(ctx context.Context, walletID string) (int, error) {
	if strings.TrimSpace(walletID) == "" {
		return 0, apperrors.NewValidationError("wallet id is required")
	}

	count, err := uc.repo.CountActiveByWallet(ctx, walletID, uc.clock.Now())
	if err != nil {
		uc.logger.Errorw("failed to count unclaimed vouchers", "wallet_id", walletID, "error", err)
		return 0, readFailure("count unclaimed vouchers", err)
	}
	return count, nil
}
