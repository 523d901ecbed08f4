package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lnpos/voucherd/internal/interfaces/cli/migrate"
	"github.com/lnpos/voucherd/internal/interfaces/cli/server"
	"github.com/lnpos/voucherd/internal/interfaces/cli/sweep"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "voucherd",
		Short: "voucherd - voucher lifecycle store",
		Long:  `voucherd stores withdraw vouchers, serves the claim, unclaim and cancel transitions over HTTP, and purges old vouchers.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		sweep.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
