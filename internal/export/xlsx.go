// Package export renders ledger reports as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the MIME type of the generated workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	sheet     = "Sheet1"
	amountFmt = "#,##0.00##;[Red]-#,##0.00##"
	dateFmt   = "2006-01-02"
)

var trialBalanceHeadings = []any{
	"Code", "Account", "Type", "Opening Dr", "Opening Cr", "Period Dr", "Period Cr", "Closing Dr", "Closing Cr", "Abnormal",
}

var bookHeadings = []any{
	"Date", "Journal", "Ref", "Memo", "Debit", "Credit", "Balance", "Cleared",
}

// WriteTrialBalance writes the trial balance as a single-sheet workbook.
func WriteTrialBalance(w io.Writer, report *domain.TrialBalanceReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(sheet, "A1", &trialBalanceHeadings); err != nil {
		return err
	}
	row := 2
	for _, r := range report.Rows {
		values := []any{
			r.AccountCode, r.AccountName, string(r.AccountType),
			amount(r.OpeningDebit), amount(r.OpeningCredit),
			amount(r.PeriodDebit), amount(r.PeriodCredit),
			amount(r.ClosingDebit), amount(r.ClosingCredit),
			yesNo(r.Abnormal),
		}
		if err := setRow(f, row, values); err != nil {
			return err
		}
		row++
	}

	t := report.Totals
	totals := []any{
		"", "Total", "",
		amount(t.OpeningDebit), amount(t.OpeningCredit),
		amount(t.PeriodDebit), amount(t.PeriodCredit),
		amount(t.ClosingDebit), amount(t.ClosingCredit),
		"",
	}
	if err := setRow(f, row, totals); err != nil {
		return err
	}
	if err := styleAmounts(f, "D", "I", row); err != nil {
		return err
	}
	return f.Write(w)
}

// WriteBook writes an account book, opening and closing balances included.
func WriteBook(w io.Writer, report *domain.BookReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(sheet, "A1", &bookHeadings); err != nil {
		return err
	}
	if err := setRow(f, 2, []any{report.From.Format(dateFmt), "", "", "Opening balance", "", "", amount(report.Opening), ""}); err != nil {
		return err
	}
	row := 3
	for _, r := range report.Rows {
		values := []any{
			r.Date.Format(dateFmt), r.JournalNumber, r.Ref, r.Memo,
			amount(r.Debit), amount(r.Credit), amount(r.RunningBalance),
			yesNo(r.Cleared),
		}
		if err := setRow(f, row, values); err != nil {
			return err
		}
		row++
	}
	closing := []any{
		report.To.Format(dateFmt), "", "", "Closing balance",
		amount(report.TotalDebit), amount(report.TotalCredit), amount(report.Closing), "",
	}
	if err := setRow(f, row, closing); err != nil {
		return err
	}
	if err := styleAmounts(f, "E", "G", row); err != nil {
		return err
	}
	return f.Write(w)
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func styleAmounts(f *excelize.File, fromCol, toCol string, lastRow int) error {
	numFmt := amountFmt
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, fromCol+"2", fmt.Sprintf("%s%d", toCol, lastRow), style)
}

// amount leaves zero cells blank so debit and credit columns read like a ledger.
func amount(d decimal.Decimal) any {
	if d.IsZero() {
		return ""
	}
	return d.InexactFloat64()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
