package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountActivity is the raw debit/credit aggregate for one account, split at a period boundary.
type AccountActivity struct {
	AccountID     string
	Code          string
	Name          string
	AccountType   AccountType
	NormalSide    Side
	Level         int
	OpeningDebit  decimal.Decimal
	OpeningCredit decimal.Decimal
	PeriodDebit   decimal.Decimal
	PeriodCredit  decimal.Decimal
}

// TrialBalanceRow represents a single row in a trial balance report.
type TrialBalanceRow struct {
	AccountID     string          `json:"accountID"`
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	NormalSide    Side            `json:"normalSide"`
	Level         int             `json:"level"`
	OpeningDebit  decimal.Decimal `json:"openingDebit"`
	OpeningCredit decimal.Decimal `json:"openingCredit"`
	PeriodDebit   decimal.Decimal `json:"periodDebit"`
	PeriodCredit  decimal.Decimal `json:"periodCredit"`
	ClosingDebit  decimal.Decimal `json:"closingDebit"`
	ClosingCredit decimal.Decimal `json:"closingCredit"`
	// Abnormal is set when the closing balance sits opposite the account's normal side.
	Abnormal bool `json:"abnormal"`
}

// TrialBalanceTotals sums every column of a trial balance.
type TrialBalanceTotals struct {
	OpeningDebit  decimal.Decimal `json:"openingDebit"`
	OpeningCredit decimal.Decimal `json:"openingCredit"`
	PeriodDebit   decimal.Decimal `json:"periodDebit"`
	PeriodCredit  decimal.Decimal `json:"periodCredit"`
	ClosingDebit  decimal.Decimal `json:"closingDebit"`
	ClosingCredit decimal.Decimal `json:"closingCredit"`
}

// TrialBalanceReport is the trial balance for one tenant.
type TrialBalanceReport struct {
	TenantID    string             `json:"tenantID"`
	PeriodStart time.Time          `json:"periodStart"`
	AsOf        time.Time          `json:"asOf"`
	Rows        []TrialBalanceRow  `json:"rows"`
	Totals      TrialBalanceTotals `json:"totals"`
}

// ClearedFilter restricts book rows by reconciliation status.
type ClearedFilter string

const (
	ClearedAll       ClearedFilter = "ALL"
	ClearedOnly      ClearedFilter = "CLEARED"
	ClearedUncleared ClearedFilter = "UNCLEARED"
)

// Valid reports whether f is a known filter.
func (f ClearedFilter) Valid() bool {
	return f == ClearedAll || f == ClearedOnly || f == ClearedUncleared
}

// BookEntry is a raw ledger line as read for a book, before running balances.
type BookEntry struct {
	JournalID     string
	JournalNumber string
	LineID        string
	PostedAt      time.Time
	RefTable      string
	RefID         string
	Memo          string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Cleared       bool
}

// BookRow is one row of a running-balance book.
type BookRow struct {
	JournalID      string          `json:"journalID"`
	JournalNumber  string          `json:"journalNumber"`
	LineID         string          `json:"lineID"`
	Date           time.Time       `json:"date"`
	Ref            string          `json:"ref"`
	Memo           string          `json:"memo"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"` // signed toward the account's normal side
	Cleared        bool            `json:"cleared"`
}

// BookReport is a cash/bank style book for one account.
//
// Opening, RunningBalance and Closing are signed toward NormalSide. For a debit-normal account
// Closing = Opening + TotalDebit - TotalCredit. For a credit-normal account
// Closing = Opening + TotalCredit - TotalDebit, so a positive balance is always a normal balance.
type BookReport struct {
	AccountID   string          `json:"accountID"`
	AccountName string          `json:"accountName"`
	NormalSide  Side            `json:"normalSide"`
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Filter      ClearedFilter   `json:"filter"`
	Opening     decimal.Decimal `json:"opening"`
	Rows        []BookRow       `json:"rows"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Closing     decimal.Decimal `json:"closing"`
}

// ARInvoiceBalance is the AR activity against one invoice.
type ARInvoiceBalance struct {
	CustomerID  string          `json:"customerID"`
	InvoiceID   string          `json:"invoiceID"`
	InvoiceDate time.Time       `json:"invoiceDate"`
	Invoiced    decimal.Decimal `json:"invoiced"`
	Collected   decimal.Decimal `json:"collected"`
	Due         decimal.Decimal `json:"due"`
}

// ARCustomerSummary rolls up a customer's invoices.
type ARCustomerSummary struct {
	CustomerID       string             `json:"customerID"`
	Invoiced         decimal.Decimal    `json:"invoiced"`
	Collected        decimal.Decimal    `json:"collected"`
	Due              decimal.Decimal    `json:"due"`
	OpenInvoiceCount int                `json:"openInvoiceCount"`
	Invoices         []ARInvoiceBalance `json:"invoices"`
}

// ARRollupReport is the receivables rollup for a tenant.
type ARRollupReport struct {
	TenantID  string              `json:"tenantID"`
	Customers []ARCustomerSummary `json:"customers"`
	Totals    ARCustomerSummary   `json:"totals"`
}

// ARAgingRow buckets one customer's open dues by days overdue.
type ARAgingRow struct {
	CustomerID string          `json:"customerID"`
	Current    decimal.Decimal `json:"current"`
	Days1To15  decimal.Decimal `json:"days1To15"`
	Days16To30 decimal.Decimal `json:"days16To30"`
	Days31To45 decimal.Decimal `json:"days31To45"`
	Over45     decimal.Decimal `json:"over45"`
	Total      decimal.Decimal `json:"total"`
}

// ARAgingReport is the receivables aging for a tenant.
type ARAgingReport struct {
	TenantID  string       `json:"tenantID"`
	AsOf      time.Time    `json:"asOf"`
	TermsDays int          `json:"termsDays"`
	Rows      []ARAgingRow `json:"rows"`
	Totals    ARAgingRow   `json:"totals"`
}

// AccountAmount represents an account with its net amount for financial statements.
type AccountAmount struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	NetAmount decimal.Decimal `json:"netAmount"`
}

// PAndLReport represents a profit and loss report.
type PAndLReport struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Income    []AccountAmount `json:"income"`
	Expenses  []AccountAmount `json:"expenses"`
	NetProfit decimal.Decimal `json:"netProfit"`
}

// BalanceSheetReport represents a balance sheet report.
type BalanceSheetReport struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	RetainedEarnings decimal.Decimal `json:"retainedEarnings"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
}
