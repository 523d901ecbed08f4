package voucher

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidVoucher wraps every creation-time validation failure.
	ErrInvalidVoucher      = errors.New("invalid voucher")
	ErrWalletLimitExceeded = errors.New("wallet voucher limit exceeded")
	ErrIDCollision         = errors.New("voucher id collision")
	ErrMissingCiphertext   = errors.New("voucher has no encrypted issuer reference")
	ErrCredentialCorrupt   = errors.New("issuer reference cannot be decrypted")
)

func errInvalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidVoucher, fmt.Sprintf(format, args...))
}

func ErrLimitExceeded(walletID string, current, max int) error {
	return fmt.Errorf("%w: wallet %s has %d of %d unclaimed vouchers", ErrWalletLimitExceeded, walletID, current, max)
}
