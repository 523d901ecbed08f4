package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	sharedConfig "github.com/lnpos/voucherd/internal/shared/config"
)

const envPrefix = "VOUCHERD"

type Config struct {
	Server   sharedConfig.ServerConfig   `mapstructure:"server"`
	Database sharedConfig.DatabaseConfig `mapstructure:"database"`
	Logger   sharedConfig.LoggerConfig   `mapstructure:"logger"`
	Redis    sharedConfig.RedisConfig    `mapstructure:"redis"`
	Voucher  sharedConfig.VoucherConfig  `mapstructure:"voucher"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml (or configFile when set), then a .env file
// if present, then VOUCHERD_* environment variables. A missing config file is
// not an error; defaults and the environment are enough to run.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// Validate rejects settings the voucher store cannot run with.
func (c *Config) Validate() error {
	vc := c.Voucher
	switch {
	case vc.MaxUnclaimedPerWallet <= 0:
		return fmt.Errorf("voucher.max_unclaimed_per_wallet must be positive")
	case vc.CleanupInterval < 0:
		return fmt.Errorf("voucher.cleanup_interval must not be negative")
	case vc.ClaimedRetention <= 0 || vc.CancelledRetention <= 0 || vc.ExpiredRetention <= 0:
		return fmt.Errorf("voucher retention windows must be positive")
	case vc.PurgeBatchSize <= 0:
		return fmt.Errorf("voucher.purge_batch_size must be positive")
	}

	switch vc.SweepGate {
	case sharedConfig.SweepGateLocal, sharedConfig.SweepGateRedis:
	default:
		return fmt.Errorf("voucher.sweep_gate must be %q or %q, got %q",
			sharedConfig.SweepGateLocal, sharedConfig.SweepGateRedis, vc.SweepGate)
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.allowed_origins", []string{})

	// Database defaults
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "voucherd")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.migration_strategy", "goose")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.max_size_mb", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age_days", 30)
	v.SetDefault("logger.compress", true)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Voucher defaults
	v.SetDefault("voucher.max_unclaimed_per_wallet", 100)
	v.SetDefault("voucher.default_expiry_id", "24h")
	v.SetDefault("voucher.cleanup_interval", "5m")
	v.SetDefault("voucher.claimed_retention", "720h")
	v.SetDefault("voucher.cancelled_retention", "720h")
	v.SetDefault("voucher.expired_retention", "168h")
	v.SetDefault("voucher.purge_batch_size", 500)
	v.SetDefault("voucher.credential_secret", "")
	v.SetDefault("voucher.sweep_gate", sharedConfig.SweepGateLocal)
	v.SetDefault("voucher.environment", "production")
}
