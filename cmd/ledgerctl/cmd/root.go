// Package cmd provides the ledgerctl commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/SscSPs/bizledger/internal/app"
	"github.com/SscSPs/bizledger/internal/platform/config"
)

const dateLayout = "2006-01-02"

var (
	envFile string
	debug   bool
	tenant  string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operate a bizledger store from the command line",
	Long: `ledgerctl runs ledger reports and maintenance against the store
configured by the same environment variables as the server
(STORE_DRIVER, PGSQL_URL, SQLITE_PATH, ...).

Example:
  ledgerctl migrate
  ledgerctl health --tenant acme --module pos
  ledgerctl trial-balance --tenant acme --from 2024-01-01 --as-of 2024-03-31 --xlsx tb.xlsx`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := slog.LevelWarn
		if debug {
			logLevel = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(trialBalanceCmd)
}

// openLedger loads configuration and wires the services without running migrations.
func openLedger(ctx context.Context) (*app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return app.New(ctx, cfg, slog.Default(), false)
}

func requireTenant() error {
	if tenant == "" {
		return fmt.Errorf("--tenant is required")
	}
	return nil
}

func parseDate(flag, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q, use YYYY-MM-DD: %w", flag, value, err)
	}
	return t, nil
}
