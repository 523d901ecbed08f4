package usecases

import (
	"context"

	"github.com/lnpos/voucherd/internal/domain/voucher"
	apperrors "github.com/lnpos/voucherd/internal/shared/errors"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

// RevealIssuerRefUseCase decrypts the stored issuer reference for the caller
// that forwards the payout. Nothing inside the store calls it.
type RevealIssuerRefUseCase struct {
	cipher voucher.CredentialCipher
	logger logger.Interface
}

func NewRevealIssuerRefUseCase(cipher voucher.CredentialCipher, logger logger.Interface) *RevealIssuerRefUseCase {
	return &RevealIssuerRefUseCase{
		cipher: cipher,
		logger: logger,
	}
}

func (uc *RevealIssuerRefUseCase) Execute(_ context.Context, v *voucher.Voucher) (string, error) {
	if v == nil {
		return "", apperrors.NewNotFoundError("voucher not found")
	}
	if v.IssuerRefCiphertext() == "" {
		if v.IssuerRef() != "" {
			return v.IssuerRef(), nil
		}
		return "", apperrors.NewInternalError("failed to reveal issuer reference", voucher.ErrMissingCiphertext.Error())
	}

	plaintext, err := uc.cipher.Decrypt(v.IssuerRefCiphertext())
	if err != nil {
		uc.logger.Errorw("failed to decrypt issuer reference", "voucher_id", v.ID(), "error", err)
		return "", apperrors.NewInternalError("failed to reveal issuer reference")
	}
	return plaintext, nil
}
