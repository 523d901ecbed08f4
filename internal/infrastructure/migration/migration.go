package migration

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/lnpos/voucherd/internal/shared/logger"
)

const (
	StrategyGoose       = "goose"
	StrategyAutoMigrate = "auto"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks a strategy by name for the given gorm dialect. Goose is
// the default.
func NewManager(strategyName, dialect string) (*Manager, error) {
	var strategy Strategy

	switch strings.ToLower(strings.TrimSpace(strategyName)) {
	case StrategyAutoMigrate:
		strategy = NewGormAutoMigrateStrategy()
	case StrategyGoose, "":
		gs, err := NewGooseStrategy(dialect)
		if err != nil {
			return nil, err
		}
		strategy = gs
	default:
		return nil, fmt.Errorf("unknown migration strategy %q", strategyName)
	}

	return NewManagerWithStrategy(strategy), nil
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.NewLogger().With("component", "migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB, models ...interface{}) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db, models...); err != nil {
		m.logger.Errorw("migration failed",
			"strategy", m.strategy.GetName(),
			"error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
