package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	healthModules  string
	failOnFindings bool
)

// errUnhealthy is returned with --fail-on-findings so scripts see a non-zero exit.
var errUnhealthy = errors.New("ledger has integrity findings")

// healthCmd runs the integrity checks for one tenant.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Report unbalanced journals, negative stock and unmapped accounts",
	Long: `Run every ledger integrity check for a tenant and print the findings.
Findings are reported only; nothing is repaired.

Example:
  ledgerctl health --tenant acme --modules pos,dms --fail-on-findings`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTenant(); err != nil {
			return err
		}
		ledger, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer ledger.Close()

		required, err := ledger.RequiredKeys(healthModules)
		if err != nil {
			return err
		}
		report, err := ledger.Services.Reporting.RunHealthChecks(cmd.Context(), tenant, required)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(report.Warnings) == 0 {
			fmt.Fprintf(out, "tenant %s: no findings\n", tenant)
			return nil
		}
		fmt.Fprintf(out, "tenant %s: %d finding(s)\n", tenant, len(report.Warnings))
		for _, w := range report.Warnings {
			fmt.Fprintf(out, "  [%s] %s: %s\n", w.Check, w.Subject, w.Message)
		}
		if failOnFindings {
			return errUnhealthy
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID")
	healthCmd.Flags().StringVar(&healthModules, "modules", "", "comma separated modules whose account map keys are checked (default all)")
	healthCmd.Flags().BoolVar(&failOnFindings, "fail-on-findings", false, "exit non-zero when any finding is reported")
}
