package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lnpos/voucherd/internal/domain/voucher"
	vo "github.com/lnpos/voucherd/internal/domain/voucher/valueobjects"
	"github.com/lnpos/voucherd/internal/shared/biztime"
	apperrors "github.com/lnpos/voucherd/internal/shared/errors"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

const DefaultMaxUnclaimedPerWallet = 100

type CreateVoucherCommand struct {
	AmountSats        int64
	WalletCurrency    string
	USDAmountCents    *int64
	WalletID          string
	IssuerRef         string
	ExpiryID          string
	CommissionPercent decimal.Decimal
	DisplayAmount     *decimal.Decimal
	DisplayCurrency   string
	Environment       string
}

type CreateVoucherConfig struct {
	MaxUnclaimedPerWallet int
	DefaultExpiryID       string
	Environment           string
}

type CreateVoucherUseCase struct {
	repo   voucher.Repository
	cipher voucher.CredentialCipher
	clock  biztime.Clock
	config CreateVoucherConfig
	logger logger.Interface
}

func NewCreateVoucherUseCase(
	repo voucher.Repository,
	cipher voucher.CredentialCipher,
	clock biztime.Clock,
	config CreateVoucherConfig,
	logger logger.Interface,
) *CreateVoucherUseCase {
	if config.MaxUnclaimedPerWallet <= 0 {
		config.MaxUnclaimedPerWallet = DefaultMaxUnclaimedPerWallet
	}
	if config.DefaultExpiryID == "" {
		config.DefaultExpiryID = vo.DefaultExpiryID
	}
	return &CreateVoucherUseCase{
		repo:   repo,
		cipher: cipher,
		clock:  clock,
		config: config,
		logger: logger,
	}
}

// Execute issues a voucher. The cap check and the insert share a transaction,
// but the cap is still read-then-act: two concurrent creates for a wallet one
// below the cap can both succeed.
func (uc *CreateVoucherUseCase) Execute(ctx context.Context, cmd CreateVoucherCommand) (*voucher.Voucher, error) {
	currency, err := vo.ParseWalletCurrency(cmd.WalletCurrency)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid voucher request", err.Error())
	}
	denomination, err := vo.NewDenomination(currency, cmd.AmountSats, cmd.USDAmountCents)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid voucher request", err.Error())
	}

	environment := cmd.Environment
	if environment == "" {
		environment = uc.config.Environment
	}

	now := uc.clock.Now()
	v, err := voucher.NewVoucher(voucher.NewVoucherParams{
		Denomination:      denomination,
		WalletID:          cmd.WalletID,
		IssuerRef:         cmd.IssuerRef,
		Expiry:            vo.ResolveExpiryWithDefault(cmd.ExpiryID, uc.config.DefaultExpiryID),
		CommissionPercent: cmd.CommissionPercent,
		DisplayAmount:     cmd.DisplayAmount,
		DisplayCurrency:   cmd.DisplayCurrency,
		Environment:       environment,
	}, now)
	if err != nil {
		if errors.Is(err, voucher.ErrInvalidVoucher) {
			return nil, validationFailure(err)
		}
		uc.logger.Errorw("failed to mint voucher", "error", err)
		return nil, apperrors.NewInternalError("failed to create voucher")
	}

	if err := checkContext(ctx, "create voucher"); err != nil {
		return nil, err
	}

	err = uc.repo.RunInTransaction(ctx, func(ctx context.Context) error {
		return uc.insertWithinLimit(ctx, v, now)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		uc.logger.Errorw("voucher create transaction failed", "voucher_id", v.ID(), "error", err)
		return nil, writeFailure("create voucher", err)
	}

	uc.logger.Infow("voucher created",
		"voucher_id", v.ID(),
		"wallet_id", v.WalletID(),
		"amount_sats", v.AmountSats(),
		"wallet_currency", v.WalletCurrency(),
		"expiry_id", v.ExpiryID(),
		"expires_at", v.ExpiresAt())

	return v, nil
}

// insertWithinLimit checks the wallet cap, seals the issuer reference and
// inserts v. Returned errors are already classified.
func (uc *CreateVoucherUseCase) insertWithinLimit(ctx context.Context, v *voucher.Voucher, now time.Time) error {
	count, err := uc.repo.CountActiveByWallet(ctx, v.WalletID(), now)
	if err != nil {
		uc.logger.Errorw("failed to count wallet vouchers", "wallet_id", v.WalletID(), "error", err)
		return readFailure("check wallet limit", err)
	}
	if count >= uc.config.MaxUnclaimedPerWallet {
		uc.logger.Warnw("wallet voucher limit reached",
			"wallet_id", v.WalletID(),
			"count", count,
			"max", uc.config.MaxUnclaimedPerWallet)
		return apperrors.NewLimitExceededError(
			"wallet has reached its unclaimed voucher limit",
			voucher.ErrLimitExceeded(v.WalletID(), count, uc.config.MaxUnclaimedPerWallet).Error(),
		)
	}

	sealed, err := uc.cipher.Encrypt(v.IssuerRef())
	if err != nil {
		uc.logger.Errorw("failed to encrypt issuer reference", "error", err)
		return apperrors.NewInternalError("failed to create voucher")
	}
	v.SealIssuerRef(sealed)

	if err := uc.repo.Create(ctx, v); err != nil {
		if errors.Is(err, voucher.ErrIDCollision) {
			uc.logger.Errorw("voucher id collision", "voucher_id", v.ID(), "error", err)
			return apperrors.NewInternalError("voucher id collision")
		}
		uc.logger.Errorw("failed to persist voucher", "voucher_id", v.ID(), "error", err)
		return writeFailure("create voucher", err)
	}

	return nil
}
