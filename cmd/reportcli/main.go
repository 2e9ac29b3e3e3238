package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"astrasreport/internal/config"
)

var (
	cfgFile  string
	logLevel string
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reportcli",
		Short:         "Sourcing events reporting from the command line",
		Long:          config.AppName + ` renders the sourcing events dashboard tables from an events
export and a market structure workbook, and writes the downloadable exports.`,
		Version:       config.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default: $"+config.ConfigFileEnv+")")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(renderCmd())
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
