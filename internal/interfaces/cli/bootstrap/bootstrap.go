// Package bootstrap loads configuration, logging and the database for the
// CLI commands.
package bootstrap

import (
	"fmt"

	"github.com/lnpos/voucherd/internal/infrastructure/config"
	"github.com/lnpos/voucherd/internal/infrastructure/database"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

// Env is what every command needs before doing real work.
type Env struct {
	Config *config.Config
	Log    logger.Interface
}

// Init loads config and sets up the process logger.
func Init(configPath string, debug bool) (*Env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if debug {
		cfg.Logger.Level = "debug"
	}
	if err := logger.Init(&cfg.Logger, debug); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &Env{Config: cfg, Log: logger.NewLogger()}, nil
}

// InitWithDatabase is Init plus the process-wide database connection.
// Callers own database.Close.
func InitWithDatabase(configPath string, debug bool) (*Env, error) {
	env, err := Init(configPath, debug)
	if err != nil {
		return nil, err
	}

	if err := database.Init(&env.Config.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return env, nil
}
