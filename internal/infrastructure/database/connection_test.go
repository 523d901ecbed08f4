package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnpos/voucherd/internal/shared/config"
)

func TestOpen_SQLiteMemory(t *testing.T) {
	gdb, err := Open(&config.DatabaseConfig{Driver: "sqlite", Database: ":memory:"})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	assert.Equal(t, DialectSQLite, gdb.Dialector.Name())

	var one int
	require.NoError(t, gdb.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestOpen_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voucherd.db")
	gdb, err := Open(&config.DatabaseConfig{Driver: "sqlite3", Database: path, MaxOpenConns: 4})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	var mode string
	require.NoError(t, gdb.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	assert.Equal(t, "wal", mode)
}
