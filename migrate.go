package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShotaHirabayashi/coachcanvas/internal/config"
	"github.com/ShotaHirabayashi/coachcanvas/internal/repository"
)

var migrateDatabase string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations and seed defaults",
	Long: `Apply pending schema migrations, seed the default coach and the
system templates, then print the schema version.

Examples:
  coachcanvas migrate
  coachcanvas migrate --db "file:prod.db?_foreign_keys=1"`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDatabase, "db", "", "database DSN (overrides DATABASE_URL)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if migrateDatabase != "" {
		cfg.DatabaseURL = migrateDatabase
	}

	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer db.Close()

	current, latest, err := db.MigrationStatus(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (latest %d)\n", current, latest)
	return nil
}
