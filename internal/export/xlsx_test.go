package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/export"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func raw(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	v, err := f.GetCellValue("Sheet1", cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestWriteTrialBalance(t *testing.T) {
	report := &domain.TrialBalanceReport{
		TenantID: "acme",
		Rows: []domain.TrialBalanceRow{
			{AccountCode: "1000", AccountName: "Cash", AccountType: domain.Asset, ClosingDebit: decimal.NewFromInt(100), PeriodDebit: decimal.NewFromInt(100)},
			{AccountCode: "4000", AccountName: "Sales", AccountType: domain.Income, ClosingCredit: decimal.NewFromInt(100), PeriodCredit: decimal.NewFromInt(100)},
		},
		Totals: domain.TrialBalanceTotals{
			PeriodDebit: decimal.NewFromInt(100), PeriodCredit: decimal.NewFromInt(100),
			ClosingDebit: decimal.NewFromInt(100), ClosingCredit: decimal.NewFromInt(100),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteTrialBalance(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Code", raw(t, f, "A1"))
	assert.Equal(t, "1000", raw(t, f, "A2"))
	assert.Equal(t, "Sales", raw(t, f, "B3"))
	assert.Equal(t, "100", raw(t, f, "H2"))
	assert.Equal(t, "", raw(t, f, "I2"))
	assert.Equal(t, "Total", raw(t, f, "B4"))
	assert.Equal(t, "100", raw(t, f, "I4"))
}

func TestWriteBook(t *testing.T) {
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	report := &domain.BookReport{
		From:    from,
		To:      from.AddDate(0, 1, -1),
		Opening: decimal.NewFromInt(50),
		Rows: []domain.BookRow{
			{Date: from.AddDate(0, 0, 2), JournalNumber: "JV-000002", Debit: decimal.NewFromInt(100), Credit: decimal.Zero, RunningBalance: decimal.NewFromInt(150), Cleared: true},
		},
		TotalDebit:  decimal.NewFromInt(100),
		TotalCredit: decimal.Zero,
		Closing:     decimal.NewFromInt(150),
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteBook(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Opening balance", raw(t, f, "D2"))
	assert.Equal(t, "50", raw(t, f, "G2"))
	assert.Equal(t, "2024-02-03", raw(t, f, "A3"))
	assert.Equal(t, "150", raw(t, f, "G3"))
	assert.Equal(t, "yes", raw(t, f, "H3"))
	assert.Equal(t, "Closing balance", raw(t, f, "D4"))
	assert.Equal(t, "2024-02-29", raw(t, f, "A4"))
}
