package migrate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/lnpos/voucherd/internal/infrastructure/database"
	"github.com/lnpos/voucherd/internal/infrastructure/migration"
	"github.com/lnpos/voucherd/internal/interfaces/cli/bootstrap"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

const scriptsRoot = "internal/infrastructure/migration/scripts"

var configPath string

// NewCommand groups the goose-backed schema commands.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the vouchers schema",
		Long:  `Apply, roll back and inspect the versioned SQL migrations embedded in the binary.`,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		RunE: withGoose(func(cmd *cobra.Command, g *migration.GooseStrategy, db *gorm.DB, log logger.Interface) error {
			log.Infow("rolling back migrations", "steps", steps)
			return g.MigrateDown(db, steps)
		}),
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to roll back")

	var name, dir string
	create := &cobra.Command{
		Use:   "create",
		Short: "Write a new numbered SQL migration for the configured driver",
		RunE: withGoose(func(cmd *cobra.Command, g *migration.GooseStrategy, db *gorm.DB, log logger.Interface) error {
			target := dir
			if target == "" {
				target = filepath.Join(scriptsRoot, db.Dialector.Name())
			}
			if err := g.Create(target, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created migration %q in %s\n", name, target)
			return nil
		}),
	}
	create.Flags().StringVarP(&name, "name", "n", "", "Migration name (required)")
	create.Flags().StringVar(&dir, "dir", "", "Target directory (default: "+scriptsRoot+"/<driver>)")
	_ = create.MarkFlagRequired("name")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: withGoose(func(cmd *cobra.Command, g *migration.GooseStrategy, db *gorm.DB, log logger.Interface) error {
				log.Infow("applying pending migrations")
				return g.Migrate(db)
			}),
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Show the applied version and pending migrations",
			RunE: withGoose(func(cmd *cobra.Command, g *migration.GooseStrategy, db *gorm.DB, log logger.Interface) error {
				version, err := g.GetVersion(db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "driver: %s\nversion: %d\n", db.Dialector.Name(), version)
				return g.Status(db)
			}),
		},
		create,
	)

	return cmd
}

type gooseFunc func(cmd *cobra.Command, g *migration.GooseStrategy, db *gorm.DB, log logger.Interface) error

// withGoose opens the configured database for the duration of one subcommand.
func withGoose(fn gooseFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		env, err := bootstrap.InitWithDatabase(configPath, false)
		if err != nil {
			return err
		}
		defer func() {
			if err := database.Close(); err != nil {
				env.Log.Warnw("failed to close database", "error", err)
			}
		}()

		db := database.Get()
		g, err := migration.NewGooseStrategy(db.Dialector.Name())
		if err != nil {
			return err
		}

		if err := fn(cmd, g, db, env.Log); err != nil {
			env.Log.Errorw("migrate command failed", "command", cmd.Name(), "error", err)
			return fmt.Errorf("migrate %s: %w", cmd.Name(), err)
		}
		return nil
	}
}
