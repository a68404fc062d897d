package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facewire/facewire/internal/core/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := newLogger("facewire-migrate")

	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := db.MigrateUp(database); err != nil {
		return err
	}

	applied, err := db.Applied(database)
	if err != nil {
		return err
	}
	log.Info().Int("applied", len(applied)).Msg("migrations up to date")
	return nil
}
