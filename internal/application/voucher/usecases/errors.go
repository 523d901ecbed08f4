package usecases

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/lnpos/voucherd/internal/domain/voucher"
	apperrors "github.com/lnpos/voucherd/internal/shared/errors"
)

// Sweeper is the retention hook fired by read paths.
type Sweeper interface {
	MaybeRun(ctx context.Context)
}

type noopSweeper struct{}

func (noopSweeper) MaybeRun(context.Context) {}

func sweeperOrNoop(s Sweeper) Sweeper {
	if s == nil {
		return noopSweeper{}
	}
	return s
}

// checkContext fails fast when the caller has already given up, so that no
// statement is sent and the failure is a plain storage failure.
func checkContext(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to %s", op), err)
	}
	return nil
}

// readFailure wraps a failed read. Reads never change state.
func readFailure(op string, err error) error {
	return apperrors.NewStorageError(fmt.Sprintf("failed to %s", op), err)
}

// writeFailure classifies a failed write. database/sql surfaces
// driver.ErrBadConn only when the statement was never delivered; anything
// else may have been applied.
func writeFailure(op string, err error) error {
	if errors.Is(err, driver.ErrBadConn) {
		return apperrors.NewStorageError(fmt.Sprintf("failed to %s", op), err)
	}
	return apperrors.NewOutcomeUnknownError(fmt.Sprintf("%s outcome unknown, re-read before retrying", op), err)
}

func validationFailure(err error) error {
	detail := strings.TrimPrefix(err.Error(), voucher.ErrInvalidVoucher.Error()+": ")
	return apperrors.NewValidationError("invalid voucher request", detail)
}
