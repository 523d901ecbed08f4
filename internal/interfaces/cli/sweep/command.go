package sweep

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lnpos/voucherd/internal/infrastructure/database"
	"github.com/lnpos/voucherd/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/lnpos/voucherd/internal/interfaces/http"
)

var configPath string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one retention sweep",
		Long:  `Mark overdue vouchers expired and purge terminal vouchers past their retention window, then exit.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	env, err := bootstrap.InitWithDatabase(configPath, false)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := cmd.Context()
	container, err := httpRouter.NewContainer(ctx, env.Config, database.Get(), env.Log)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer container.Shutdown()

	sweeper := container.Store().Sweeper()
	if sweeper == nil {
		return errors.New("retention sweeper is not configured")
	}

	out := cmd.OutOrStdout()
	if last, ok, err := sweeper.LastRun(ctx); err != nil {
		env.Log.Warnw("failed to read last sweep time", "error", err)
	} else if ok {
		fmt.Fprintf(out, "Last gated sweep: %s\n", last.UTC().Format(time.RFC3339))
	} else {
		fmt.Fprintf(out, "Last gated sweep: none recorded\n")
	}

	result, err := sweeper.RunNow(ctx)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Fprintf(out, "\nSweep Result:\n")
	fmt.Fprintf(out, "  Expired:           %d\n", result.Expired)
	fmt.Fprintf(out, "  Purged claimed:    %d\n", result.PurgedClaimed)
	fmt.Fprintf(out, "  Purged cancelled:  %d\n", result.PurgedCancelled)
	fmt.Fprintf(out, "  Purged expired:    %d\n", result.PurgedExpired)
	fmt.Fprintf(out, "  Completed purging: %t\n", result.CompletedPurging)
	fmt.Fprintf(out, "  Duration:          %s\n", result.Duration)

	return nil
}
