package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnpos/voucherd/internal/application/voucher/testutil"
	"github.com/lnpos/voucherd/internal/domain/voucher"
	vo "github.com/lnpos/voucherd/internal/domain/voucher/valueobjects"
	"github.com/lnpos/voucherd/internal/infrastructure/repository"
	"github.com/lnpos/voucherd/internal/shared/biztime"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

// --- helpers ---

func seedVoucher(t *testing.T, repo voucher.Repository, now time.Time, expiryID string) *voucher.Voucher {
	t.Helper()

	denomination, err := vo.NewBTCDenomination(500)
	require.NoError(t, err)
	preset, ok := vo.LookupExpiry(expiryID)
	require.True(t, ok)

	v, err := voucher.NewVoucher(voucher.NewVoucherParams{
		Denomination: denomination,
		WalletID:     "W",
		IssuerRef:    "ref",
		Expiry:       preset,
	}, now)
	require.NoError(t, err)
	v.SealIssuerRef("sealed")
	require.NoError(t, repo.Create(context.Background(), v))
	return v
}

func countRows(t *testing.T, repo voucher.Repository) int {
	t.Helper()
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	return len(list)
}

type failingGate struct{}

func (failingGate) Acquire(context.Context, time.Time, time.Duration) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func (failingGate) LastRun(context.Context) (time.Time, bool, error) {
	return time.Time{}, false, errors.New("redis: connection refused")
}

// endlessPurgeRepo reports a full batch on every purge.
type endlessPurgeRepo struct {
	voucher.Repository
	batches int
}

func (r *endlessPurgeRepo) ExpireOverdue(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (r *endlessPurgeRepo) PurgeBatch(_ context.Context, _ vo.Status, _ time.Time, limit int) (int64, error) {
	r.batches++
	return int64(limit), nil
}

// --- tests ---

func TestLocalGate_Debounce(t *testing.T) {
	gate := NewLocalGate()
	ctx := context.Background()
	now := testutil.Epoch

	_, held, err := gate.LastRun(ctx)
	require.NoError(t, err)
	assert.False(t, held)

	ok, err := gate.Acquire(ctx, now, 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = gate.Acquire(ctx, now.Add(4*time.Minute), 5*time.Minute)
	assert.False(t, ok)
	last, held, err := gate.LastRun(ctx)
	require.NoError(t, err)
	assert.True(t, held)
	assert.Equal(t, now, last)

	ok, _ = gate.Acquire(ctx, now.Add(5*time.Minute), 5*time.Minute)
	assert.True(t, ok)
	last, _, _ = gate.LastRun(ctx)
	assert.Equal(t, now.Add(5*time.Minute), last)
}

func TestRetentionSweeper_ExpiresOverdue(t *testing.T) {
	repo := repository.NewVoucherRepository(testutil.NewSQLiteDB(t))
	clock := biztime.NewFakeClock(testutil.Epoch)
	ctx := context.Background()

	overdue := seedVoucher(t, repo, clock.Now(), "1h")
	fresh := seedVoucher(t, repo, clock.Now(), "24h")

	clock.Set(overdue.ExpiresAt())

	sweeper := NewRetentionSweeper(repo, NewLocalGate(), clock, DefaultRetentionPolicy(), logger.NewNopLogger())
	result, err := sweeper.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Expired)
	assert.Equal(t, int64(0), result.Purged())
	assert.True(t, result.CompletedPurging)

	got, err := repo.GetByID(ctx, overdue.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.StatusExpired, got.Status())

	got, err = repo.GetByID(ctx, fresh.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.StatusActive, got.Status())

	// Running again finds nothing.
	result, err = sweeper.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Expired)
}

func TestRetentionSweeper_PurgesPastRetention(t *testing.T) {
	repo := repository.NewVoucherRepository(testutil.NewSQLiteDB(t))
	clock := biztime.NewFakeClock(testutil.Epoch)
	ctx := context.Background()

	claimed := seedVoucher(t, repo, clock.Now(), "90d")
	ok, err := repo.Claim(ctx, claimed.ID(), clock.Now())
	require.NoError(t, err)
	require.True(t, ok)

	cancelled := seedVoucher(t, repo, clock.Now(), "90d")
	ok, err = repo.Cancel(ctx, cancelled.ID(), clock.Now())
	require.NoError(t, err)
	require.True(t, ok)

	expired := seedVoucher(t, repo, clock.Now(), "1h")
	active := seedVoucher(t, repo, clock.Now(), "90d")

	policy := DefaultRetentionPolicy()
	sweeper := NewRetentionSweeper(repo, NewLocalGate(), clock, policy, logger.NewNopLogger())

	// Inside every retention window nothing is purged.
	clock.Advance(6 * 24 * time.Hour)
	result, err := sweeper.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Expired)
	assert.Equal(t, int64(0), result.Purged())
	assert.Equal(t, 4, countRows(t, repo))

	// Expired vouchers go after 7 days past expiry.
	clock.Set(expired.ExpiresAt().Add(policy.ExpiredRetention + time.Second))
	result, err = sweeper.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.PurgedExpired)
	assert.Equal(t, 3, countRows(t, repo))

	// Claimed and cancelled go after 30 days.
	clock.Set(testutil.Epoch.Add(policy.ClaimedRetention + time.Second))
	result, err = sweeper.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.PurgedClaimed)
	assert.Equal(t, int64(1), result.PurgedCancelled)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID(), list[0].ID())
}

func TestRetentionSweeper_PurgesInBatches(t *testing.T) {
	repo := repository.NewVoucherRepository(testutil.NewSQLiteDB(t))
	clock := biztime.NewFakeClock(testutil.Epoch)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		v := seedVoucher(t, repo, clock.Now(), "90d")
		ok, err := repo.Cancel(ctx, v.ID(), clock.Now())
		require.NoError(t, err)
		require.True(t, ok)
	}

	faulty := testutil.NewFaultyRepository(repo)
	policy := RetentionPolicy{PurgeBatchSize: 2}
	sweeper := NewRetentionSweeper(faulty, NewLocalGate(), clock, policy, logger.NewNopLogger())

	clock.Advance(31 * 24 * time.Hour)
	result, err := sweeper.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.PurgedCancelled)
	assert.True(t, result.CompletedPurging)
	assert.Equal(t, 0, countRows(t, repo))

	// claimed: 1 short batch, cancelled: 2+2+1, expired: 1 short batch.
	assert.Equal(t, 5, faulty.Calls("PurgeBatch"))
}

func TestRetentionSweeper_BoundsBatchesPerRun(t *testing.T) {
	repo := &endlessPurgeRepo{}
	sweeper := NewRetentionSweeper(repo, NewLocalGate(), biztime.NewFakeClock(testutil.Epoch), RetentionPolicy{}, logger.NewNopLogger())

	result, err := sweeper.RunNow(context.Background())
	require.NoError(t, err)
	assert.False(t, result.CompletedPurging)
	assert.Equal(t, 3*maxBatchesPerStatus, repo.batches)
	assert.Equal(t, int64(3*maxBatchesPerStatus*DefaultPurgeBatchSize), result.Purged())
}

func TestRetentionSweeper_MaybeRunIsDebounced(t *testing.T) {
	faulty := testutil.NewFaultyRepository(repository.NewVoucherRepository(testutil.NewSQLiteDB(t)))
	clock := biztime.NewFakeClock(testutil.Epoch)
	sweeper := NewRetentionSweeper(faulty, NewLocalGate(), clock, DefaultRetentionPolicy(), logger.NewNopLogger())
	ctx := context.Background()

	sweeper.MaybeRun(ctx)
	sweeper.MaybeRun(ctx)
	assert.Equal(t, 1, faulty.Calls("ExpireOverdue"))

	clock.Advance(DefaultCleanupInterval)
	sweeper.MaybeRun(ctx)
	assert.Equal(t, 2, faulty.Calls("ExpireOverdue"))
}

func TestRetentionSweeper_TickJitterDoesNotSkipSweeps(t *testing.T) {
	faulty := testutil.NewFaultyRepository(repository.NewVoucherRepository(testutil.NewSQLiteDB(t)))
	clock := biztime.NewFakeClock(testutil.Epoch)
	sweeper := NewRetentionSweeper(faulty, NewLocalGate(), clock, DefaultRetentionPolicy(), logger.NewNopLogger())
	ctx := context.Background()

	// The first sweep is recorded late; the next tick lands just under one
	// interval after it.
	clock.Advance(2 * time.Second)
	sweeper.MaybeRun(ctx)
	clock.Advance(DefaultCleanupInterval - 2*time.Second)
	sweeper.MaybeRun(ctx)
	assert.Equal(t, 2, faulty.Calls("ExpireOverdue"))

	clock.Advance(DefaultCleanupInterval / 2)
	sweeper.MaybeRun(ctx)
	assert.Equal(t, 2, faulty.Calls("ExpireOverdue"), "half an interval is still debounced")
}

func TestRetentionSweeper_ZeroIntervalSweepsEveryTime(t *testing.T) {
	faulty := testutil.NewFaultyRepository(repository.NewVoucherRepository(testutil.NewSQLiteDB(t)))
	sweeper := NewRetentionSweeper(faulty, nil, biztime.NewFakeClock(testutil.Epoch), RetentionPolicy{CleanupInterval: 0}, logger.NewNopLogger())

	sweeper.MaybeRun(context.Background())
	sweeper.MaybeRun(context.Background())
	assert.Equal(t, 2, faulty.Calls("ExpireOverdue"))
}

func TestRetentionSweeper_FailuresAreContained(t *testing.T) {
	faulty := testutil.NewFaultyRepository(repository.NewVoucherRepository(testutil.NewSQLiteDB(t)))
	clock := biztime.NewFakeClock(testutil.Epoch)
	ctx := context.Background()

	t.Run("gate error skips the sweep", func(t *testing.T) {
		sweeper := NewRetentionSweeper(faulty, failingGate{}, clock, DefaultRetentionPolicy(), logger.NewNopLogger())
		assert.NotPanics(t, func() { sweeper.MaybeRun(ctx) })
		assert.Equal(t, 0, faulty.Calls("ExpireOverdue"))
	})

	t.Run("expire error stops before purging", func(t *testing.T) {
		faulty.ExpireErr = errors.New("deadlock")
		defer func() { faulty.ExpireErr = nil }()

		sweeper := NewRetentionSweeper(faulty, NewLocalGate(), clock, DefaultRetentionPolicy(), logger.NewNopLogger())
		sweeper.MaybeRun(ctx)

		_, err := sweeper.RunNow(ctx)
		assert.Error(t, err)
		assert.Equal(t, 0, faulty.Calls("PurgeBatch"))
	})

	t.Run("purge error is reported", func(t *testing.T) {
		faulty.PurgeErr = errors.New("lock wait timeout")
		defer func() { faulty.PurgeErr = nil }()

		sweeper := NewRetentionSweeper(faulty, NewLocalGate(), clock, DefaultRetentionPolicy(), logger.NewNopLogger())
		_, err := sweeper.RunNow(ctx)
		assert.ErrorContains(t, err, "purge CLAIMED step")
	})
}

func TestRetentionPolicy_Defaults(t *testing.T) {
	p := RetentionPolicy{CleanupInterval: -1}.withDefaults()
	assert.Equal(t, DefaultRetentionPolicy(), p)

	p = RetentionPolicy{CleanupInterval: 0, PurgeBatchSize: 10}.withDefaults()
	assert.Equal(t, time.Duration(0), p.CleanupInterval)
	assert.Equal(t, 10, p.PurgeBatchSize)
}
