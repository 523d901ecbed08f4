package migration

import (
	"embed"
	"fmt"
	"path"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/lnpos/voucherd/internal/shared/logger"
)

//go:embed scripts
var scriptsFS embed.FS

// Strategy defines the interface for different migration strategies
type Strategy interface {
	// Migrate brings the schema up to date
	Migrate(db *gorm.DB, models ...interface{}) error
	// GetName returns the strategy name
	GetName() string
}

// GooseStrategy applies the versioned SQL scripts embedded for one dialect.
type GooseStrategy struct {
	dialect string
	logger  logger.Interface
}

// NewGooseStrategy builds a strategy for a gorm dialector name
// (mysql, postgres or sqlite).
func NewGooseStrategy(dialect string) (*GooseStrategy, error) {
	if _, err := gooseDialect(dialect); err != nil {
		return nil, err
	}
	return &GooseStrategy{
		dialect: dialect,
		logger:  logger.NewLogger().With("component", "migration.goose"),
	}, nil
}

func gooseDialect(dialect string) (string, error) {
	switch dialect {
	case "mysql":
		return "mysql", nil
	case "postgres":
		return "postgres", nil
	case "sqlite":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("no migration scripts for dialect %q", dialect)
	}
}

func (s *GooseStrategy) scriptsDir() string {
	return path.Join("scripts", s.dialect)
}

// prepare points goose at the embedded scripts. goose keeps this as package
// state, so every entry point sets it again.
func (s *GooseStrategy) prepare() error {
	d, err := gooseDialect(s.dialect)
	if err != nil {
		return err
	}
	goose.SetBaseFS(scriptsFS)
	if err := goose.SetDialect(d); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

func (s *GooseStrategy) Migrate(db *gorm.DB, _ ...interface{}) error {
	s.logger.Infow("starting goose migration", "dialect", s.dialect)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := s.prepare(); err != nil {
		return err
	}

	currentVersion, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		s.logger.Errorw("failed to get current version", "error", err)
		return fmt.Errorf("failed to get current version: %w", err)
	}

	if err := goose.Up(sqlDB, s.scriptsDir()); err != nil {
		s.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	finalVersion, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to get final version: %w", err)
	}

	s.logger.Infow("migration completed successfully",
		"from_version", currentVersion,
		"to_version", finalVersion)

	return nil
}

func (s *GooseStrategy) GetName() string {
	return "goose"
}

// MigrateDown rolls back the given number of versions.
func (s *GooseStrategy) MigrateDown(db *gorm.DB, steps int) error {
	s.logger.Infow("starting down migration", "steps", steps)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := s.prepare(); err != nil {
		return err
	}

	for i := 0; i < steps; i++ {
		if err := goose.Down(sqlDB, s.scriptsDir()); err != nil {
			s.logger.Errorw("down migration failed", "error", err)
			return fmt.Errorf("failed to run down migration: %w", err)
		}
	}

	s.logger.Infow("down migration completed successfully")
	return nil
}

func (s *GooseStrategy) GetVersion(db *gorm.DB) (int64, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := s.prepare(); err != nil {
		return 0, err
	}

	version, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}

	return version, nil
}

func (s *GooseStrategy) Status(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := s.prepare(); err != nil {
		return err
	}

	if err := goose.Status(sqlDB, s.scriptsDir()); err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	return nil
}

// Create writes a new sequentially numbered SQL migration into dir on disk.
func (s *GooseStrategy) Create(dir, name string) error {
	d, err := gooseDialect(s.dialect)
	if err != nil {
		return err
	}
	goose.SetBaseFS(nil)
	defer goose.SetBaseFS(scriptsFS)
	goose.SetSequential(true)

	if err := goose.SetDialect(d); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}

	s.logger.Infow("migration created successfully", "name", name, "dir", dir)
	return nil
}
