package migration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lnpos/voucherd/internal/infrastructure/database"
	"github.com/lnpos/voucherd/internal/shared/config"
)

// --- helpers ---

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite", Database: ":memory:"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestGooseStrategy_UpAndDown(t *testing.T) {
	db := setupTestDB(t)

	strategy, err := NewGooseStrategy(db.Dialector.Name())
	require.NoError(t, err)

	require.NoError(t, NewManagerWithStrategy(strategy).Migrate(db))
	assert.True(t, db.Migrator().HasTable("vouchers"))
	assert.True(t, db.Migrator().HasIndex("vouchers", "idx_vouchers_expires_at"))

	version, err := strategy.GetVersion(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Re-running is a no-op.
	require.NoError(t, strategy.Migrate(db))

	require.NoError(t, strategy.MigrateDown(db, 1))
	assert.False(t, db.Migrator().HasTable("vouchers"))
}

func TestGormAutoMigrateStrategy(t *testing.T) {
	db := setupTestDB(t)

	m, err := NewManager(StrategyAutoMigrate, db.Dialector.Name())
	require.NoError(t, err)
	assert.Equal(t, "gorm_auto_migrate", m.GetStrategy().GetName())

	require.NoError(t, m.Migrate(db))
	assert.True(t, db.Migrator().HasTable("vouchers"))
	assert.True(t, db.Migrator().HasColumn("vouchers", "issuer_ref_encrypted"))
}

func TestNewManager(t *testing.T) {
	m, err := NewManager("", "postgres")
	require.NoError(t, err)
	assert.Equal(t, "goose", m.GetStrategy().GetName())

	_, err = NewManager(StrategyGoose, "oracle")
	assert.Error(t, err)

	_, err = NewManager("flyway", "mysql")
	assert.Error(t, err)
}

func TestGooseStrategy_Create(t *testing.T) {
	strategy, err := NewGooseStrategy("sqlite")
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, strategy.Create(dir, "add_wallet_status_index"))

	files, err := filepath.Glob(filepath.Join(dir, "*_add_wallet_status_index.sql"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
