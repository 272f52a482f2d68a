package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/SscSPs/bizledger/internal/platform/config"
	"github.com/SscSPs/bizledger/pkg/database"
)

// migrateCmd applies pending Postgres migrations.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply every pending "up" migration from MIGRATIONS_PATH to PGSQL_URL.
The SQLite store creates its schema when opened and needs no migrations.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		if cfg.StoreDriver != config.DriverPostgres {
			return fmt.Errorf("migrate requires STORE_DRIVER=%s, got %s", config.DriverPostgres, cfg.StoreDriver)
		}
		return database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, slog.Default())
	},
}
