package config

import (
	"fmt"
	"strings"
	"time"
)

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects one of the supported drivers: mysql, postgres or sqlite.
// For sqlite, Database holds the file path (or ":memory:").
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	// MigrationStrategy is goose (versioned SQL) or auto (gorm AutoMigrate).
	MigrationStrategy string `mapstructure:"migration_strategy"`
}

// GetDriver returns the normalised driver name, defaulting to mysql.
func (d *DatabaseConfig) GetDriver() string {
	switch strings.ToLower(strings.TrimSpace(d.Driver)) {
	case "postgres", "postgresql", "pgx":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return "mysql"
	}
}

func (d *DatabaseConfig) GetDSN() string {
	switch d.GetDriver() {
	case "postgres":
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.Username, d.Password, d.Database, sslMode)
	case "sqlite":
		if d.Database == "" {
			return "voucherd.db"
		}
		return d.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, d.Password, d.Host, d.Port, d.Database)
	}
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

const (
	SweepGateLocal = "local"
	SweepGateRedis = "redis"
)

// VoucherConfig holds the lifecycle tunables of the voucher store.
type VoucherConfig struct {
	MaxUnclaimedPerWallet int           `mapstructure:"max_unclaimed_per_wallet"`
	DefaultExpiryID       string        `mapstructure:"default_expiry_id"`
	CleanupInterval       time.Duration `mapstructure:"cleanup_interval"`
	ClaimedRetention      time.Duration `mapstructure:"claimed_retention"`
	CancelledRetention    time.Duration `mapstructure:"cancelled_retention"`
	ExpiredRetention      time.Duration `mapstructure:"expired_retention"`
	PurgeBatchSize        int           `mapstructure:"purge_batch_size"`
	CredentialSecret      string        `mapstructure:"credential_secret"`
	SweepGate             string        `mapstructure:"sweep_gate"`
	Environment           string        `mapstructure:"environment"`
}
