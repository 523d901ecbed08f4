package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lnpos/voucherd/internal/infrastructure/database"
	"github.com/lnpos/voucherd/internal/infrastructure/migration"
	"github.com/lnpos/voucherd/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/lnpos/voucherd/internal/interfaces/http"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

var (
	configPath         string
	debug              bool
	autoMigrate        bool
	skipMigrationCheck bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the voucherd HTTP server and the background retention scheduler.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging with source locations")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Apply pending migrations on startup")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	env, err := bootstrap.InitWithDatabase(configPath, debug)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			env.Log.Warnw("failed to close database", "error", err)
		}
	}()

	cfg := env.Config
	log := env.Log

	if err := handleMigrations(log, cfg.Database.MigrationStrategy); err != nil {
		return err
	}

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := httpRouter.NewContainer(ctx, cfg, database.Get(), log)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer container.Shutdown()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	container.StartBackground(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode,
			"environment", cfg.Voucher.Environment)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorw("server forced to shutdown", "error", err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func handleMigrations(log logger.Interface, strategyName string) error {
	db := database.Get()

	if autoMigrate {
		log.Infow("applying migrations on startup", "strategy", strategyName)
		manager, err := migration.NewManager(strategyName, db.Dialector.Name())
		if err != nil {
			return err
		}
		return manager.Migrate(db)
	}

	if skipMigrationCheck {
		log.Infow("skipping migration check")
		return nil
	}

	strategy, err := migration.NewGooseStrategy(db.Dialector.Name())
	if err != nil {
		return err
	}
	version, err := strategy.GetVersion(db)
	if err != nil {
		log.Warnw("failed to check migration status", "error", err)
		return nil
	}
	if version == 0 {
		log.Warnw("database has no migrations applied, run `voucherd migrate up` or start with --auto-migrate")
		return nil
	}

	log.Infow("current migration version", "version", version)
	return nil
}
