package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"eventreg/config"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "eventreg",
	Short: "Event registration service",
	Long:  `Capacity-bounded, duplicate-safe registration for events, served over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger = config.NewLogger(cfg)
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
