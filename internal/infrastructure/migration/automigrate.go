package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/lnpos/voucherd/internal/infrastructure/persistence/models"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

// AutoMigrateModels lists the models owned by this service.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.VoucherModel{},
	}
}

// GormAutoMigrateStrategy derives the schema from the gorm models. Meant for
// local development and throwaway databases.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{
		logger: logger.NewLogger().With("component", "migration.automigrate"),
	}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, models ...interface{}) error {
	if len(models) == 0 {
		models = AutoMigrateModels()
	}

	s.logger.Infow("running gorm automigrate", "models_count", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to automigrate: %w", err)
	}
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}
