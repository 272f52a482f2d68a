package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/export"
)

var (
	tbFrom string
	tbAsOf string
	tbXLSX string
)

// trialBalanceCmd prints or exports a tenant's trial balance.
var trialBalanceCmd = &cobra.Command{
	Use:   "trial-balance",
	Short: "Print or export a trial balance",
	Long: `Print a tenant's trial balance for the period from --from through --as-of,
or write it as an Excel workbook with --xlsx.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTenant(); err != nil {
			return err
		}
		from, err := parseDate("from", tbFrom)
		if err != nil {
			return err
		}
		asOf, err := parseDate("as-of", tbAsOf)
		if err != nil {
			return err
		}

		ledger, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer ledger.Close()

		report, err := ledger.Services.Reporting.TrialBalance(cmd.Context(), tenant, from, dto.EndOfDay(asOf))
		if err != nil {
			return err
		}

		if tbXLSX != "" {
			f, err := os.Create(tbXLSX)
			if err != nil {
				return err
			}
			if err := export.WriteTrialBalance(f, report); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d account(s) to %s\n", len(report.Rows), tbXLSX)
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Code\tAccount\tOpening Dr\tOpening Cr\tPeriod Dr\tPeriod Cr\tClosing Dr\tClosing Cr\t")
		for _, r := range report.Rows {
			name := r.AccountName
			if r.Abnormal {
				name += " (!)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n", r.AccountCode, name,
				r.OpeningDebit.StringFixed(2), r.OpeningCredit.StringFixed(2),
				r.PeriodDebit.StringFixed(2), r.PeriodCredit.StringFixed(2),
				r.ClosingDebit.StringFixed(2), r.ClosingCredit.StringFixed(2))
		}
		t := report.Totals
		fmt.Fprintf(tw, "\tTotal\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			t.OpeningDebit.StringFixed(2), t.OpeningCredit.StringFixed(2),
			t.PeriodDebit.StringFixed(2), t.PeriodCredit.StringFixed(2),
			t.ClosingDebit.StringFixed(2), t.ClosingCredit.StringFixed(2))
		return tw.Flush()
	},
}

func init() {
	trialBalanceCmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID")
	trialBalanceCmd.Flags().StringVar(&tbFrom, "from", "", "period start, YYYY-MM-DD")
	trialBalanceCmd.Flags().StringVar(&tbAsOf, "as-of", "", "report date, YYYY-MM-DD (inclusive)")
	trialBalanceCmd.Flags().StringVar(&tbXLSX, "xlsx", "", "write an Excel workbook to this path instead of printing")
	_ = trialBalanceCmd.MarkFlagRequired("from")
	_ = trialBalanceCmd.MarkFlagRequired("as-of")
}
