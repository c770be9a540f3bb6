package main

import (
	"fmt"
	"log/slog"
	"os"

	"placement-portal/internal/config"
	"placement-portal/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	cfg config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "placement-api",
	Short: "Campus placement portal API",
	Long: `placement-api serves the multi-tenant placement portal: accounts, companies,
job openings, applications, offers and reports, behind token authentication
and route-level role checks.`,
	SilenceUsage: true,
}

// loadConfig is shared by subcommands that touch storage. The routes command does not need it.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log = logger.New(cfg.App.Env)
	slog.SetDefault(log)
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(routesCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
