package http

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnpos/voucherd/internal/application/voucher/testutil"
	"github.com/lnpos/voucherd/internal/application/voucher/usecases"
	"github.com/lnpos/voucherd/internal/infrastructure/config"
	handlertestutil "github.com/lnpos/voucherd/internal/interfaces/http/handlers/testutil"
	sharedConfig "github.com/lnpos/voucherd/internal/shared/config"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Voucher: sharedConfig.VoucherConfig{
			MaxUnclaimedPerWallet: 10,
			DefaultExpiryID:       "24h",
			CredentialSecret:      "0123456789abcdef0123456789abcdef",
			SweepGate:             sharedConfig.SweepGateLocal,
			Environment:           "test",
		},
	}
}

func TestNewContainer_LocalGate(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, testConfig(), testutil.NewSQLiteDB(t), logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)

	v, err := c.Store().CreateVoucher(ctx, usecases.CreateVoucherCommand{
		AmountSats: 1000, WalletID: "W", IssuerRef: "lnurl-secret",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "lnurl-secret", v.IssuerRefCiphertext())
	assert.Equal(t, "test", v.Environment())

	stored, err := c.Store().GetVoucher(ctx, v.ID())
	require.NoError(t, err)
	plaintext, err := c.Store().RevealIssuerRef(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, "lnurl-secret", plaintext)

	w := handlertestutil.Do(c.Engine(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewContainer_RedisGate(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Voucher.SweepGate = sharedConfig.SweepGateRedis
	cfg.Voucher.CleanupInterval = time.Minute
	cfg.Redis = sharedConfig.RedisConfig{Host: mr.Host(), Port: port}

	c, err := NewContainer(context.Background(), cfg, testutil.NewSQLiteDB(t), logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)

	_, err = c.Store().GetStats(context.Background())
	require.NoError(t, err)
	assert.True(t, mr.Exists("voucherd:sweep:test"))
}

func TestNewContainer_RejectsShortSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Voucher.CredentialSecret = "short"

	_, err := NewContainer(context.Background(), cfg, testutil.NewSQLiteDB(t), logger.NewNopLogger())
	assert.Error(t, err)
}
