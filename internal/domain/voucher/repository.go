package voucher

import (
	"context"
	"time"

	vo "github.com/lnpos/voucherd/internal/domain/voucher/valueobjects"
)

// Repository is the durable store of vouchers. Every state transition is a
// single conditional write; the bool results report whether this caller's
// write took effect.
type Repository interface {
	Create(ctx context.Context, v *Voucher) error
	GetByID(ctx context.Context, id string) (*Voucher, error)
	// GetRedeemable returns nil when the voucher is missing or not ACTIVE at now.
	GetRedeemable(ctx context.Context, id string, now time.Time) (*Voucher, error)

	Claim(ctx context.Context, id string, now time.Time) (bool, error)
	Unclaim(ctx context.Context, id string, now time.Time) (bool, error)
	Cancel(ctx context.Context, id string, now time.Time) (bool, error)

	CountActiveByWallet(ctx context.Context, walletID string, now time.Time) (int, error)
	List(ctx context.Context) ([]*Voucher, error)
	Stats(ctx context.Context, now time.Time) (Stats, error)

	// ExpireOverdue moves ACTIVE, unclaimed vouchers whose expiry is at or
	// before now to EXPIRED.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
	// PurgeBatch deletes at most limit vouchers in status whose retention
	// timestamp is older than cutoff.
	PurgeBatch(ctx context.Context, status vo.Status, cutoff time.Time, limit int) (int64, error)

	// RunInTransaction runs fn in one transaction. Repository calls made with
	// the context passed to fn take part in it.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CredentialCipher seals the issuer reference at rest.
type CredentialCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
