package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eventreg/internal/repository/postgres"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the embedded database migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(postgres.MigrateUp), string(postgres.MigrateDown)},
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openPostgres(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		direction := postgres.MigrateDirection(args[0])
		if err := postgres.Migrate(db, direction); err != nil {
			return fmt.Errorf("migrate %s: %w", direction, err)
		}
		logger.Info("migrations applied", "direction", string(direction))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
