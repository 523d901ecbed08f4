// Package testutil provides database fixtures and fault-injecting fakes for
// testing the voucher application layer.
package testutil

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lnpos/voucherd/internal/domain/voucher"
	vo "github.com/lnpos/voucherd/internal/domain/voucher/valueobjects"
	"github.com/lnpos/voucherd/internal/infrastructure/database"
	"github.com/lnpos/voucherd/internal/infrastructure/migration"
	"github.com/lnpos/voucherd/internal/shared/config"
)

// Epoch is a whole-second UTC instant tests pin their clocks to.
var Epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// NewSQLiteDB opens a migrated in-memory database that lives for the test.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite", Database: ":memory:"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	strategy, err := migration.NewGooseStrategy(db.Dialector.Name())
	require.NoError(t, err)
	require.NoError(t, migration.NewManagerWithStrategy(strategy).Migrate(db))

	return db
}

// FaultyRepository wraps a repository and fails the operations whose error
// field is set. Calls counts every intercepted operation by name.
type FaultyRepository struct {
	voucher.Repository

	CreateErr error
	ReadErr   error
	WriteErr  error
	CountErr  error
	StatsErr  error
	ExpireErr error
	PurgeErr  error
	TxErr     error

	mu    sync.Mutex
	calls map[string]int
}

func NewFaultyRepository(inner voucher.Repository) *FaultyRepository {
	return &FaultyRepository{Repository: inner, calls: make(map[string]int)}
}

func (f *FaultyRepository) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

// Calls returns how many times op was invoked.
func (f *FaultyRepository) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FaultyRepository) Create(ctx context.Context, v *voucher.Voucher) error {
	f.record("Create")
	if f.CreateErr != nil {
		return f.CreateErr
	}
	return f.Repository.Create(ctx, v)
}

func (f *FaultyRepository) GetByID(ctx context.Context, id string) (*voucher.Voucher, error) {
	f.record("GetByID")
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	return f.Repository.GetByID(ctx, id)
}

func (f *FaultyRepository) GetRedeemable(ctx context.Context, id string, now time.Time) (*voucher.Voucher, error) {
	f.record("GetRedeemable")
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	return f.Repository.GetRedeemable(ctx, id, now)
}

func (f *FaultyRepository) List(ctx context.Context) ([]*voucher.Voucher, error) {
	f.record("List")
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	return f.Repository.List(ctx)
}

func (f *FaultyRepository) Claim(ctx context.Context, id string, now time.Time) (bool, error) {
	f.record("Claim")
	if f.WriteErr != nil {
		return false, f.WriteErr
	}
	return f.Repository.Claim(ctx, id, now)
}

func (f *FaultyRepository) Unclaim(ctx context.Context, id string, now time.Time) (bool, error) {
	f.record("Unclaim")
	if f.WriteErr != nil {
		return false, f.WriteErr
	}
	return f.Repository.Unclaim(ctx, id, now)
}

func (f *FaultyRepository) Cancel(ctx context.Context, id string, now time.Time) (bool, error) {
	f.record("Cancel")
	if f.WriteErr != nil {
		return false, f.WriteErr
	}
	return f.Repository.Cancel(ctx, id, now)
}

func (f *FaultyRepository) CountActiveByWallet(ctx context.Context, walletID string, now time.Time) (int, error) {
	f.record("CountActiveByWallet")
	if f.CountErr != nil {
		return 0, f.CountErr
	}
	return f.Repository.CountActiveByWallet(ctx, walletID, now)
}

func (f *FaultyRepository) Stats(ctx context.Context, now time.Time) (voucher.Stats, error) {
	f.record("Stats")
	if f.StatsErr != nil {
		return voucher.Stats{}, f.StatsErr
	}
	return f.Repository.Stats(ctx, now)
}

func (f *FaultyRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	f.record("ExpireOverdue")
	if f.ExpireErr != nil {
		return 0, f.ExpireErr
	}
	return f.Repository.ExpireOverdue(ctx, now)
}

func (f *FaultyRepository) PurgeBatch(ctx context.Context, status vo.Status, cutoff time.Time, limit int) (int64, error) {
	f.record("PurgeBatch")
	if f.PurgeErr != nil {
		return 0, f.PurgeErr
	}
	return f.Repository.PurgeBatch(ctx, status, cutoff, limit)
}

func (f *FaultyRepository) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.record("RunInTransaction")
	if f.TxErr != nil {
		return f.TxErr
	}
	return f.Repository.RunInTransaction(ctx, fn)
}

// PlainCipher stores the issuer reference reversibly without a key.
type PlainCipher struct{}

func (PlainCipher) Encrypt(plaintext string) (string, error) {
	return "plain:" + plaintext, nil
}

func (PlainCipher) Decrypt(ciphertext string) (string, error) {
	plaintext, ok := strings.CutPrefix(ciphertext, "plain:")
	if !ok {
		return "", voucher.ErrCredentialCorrupt
	}
	return plaintext, nil
}
