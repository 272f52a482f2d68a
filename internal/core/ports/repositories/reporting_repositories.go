package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportingRepository runs the read-only aggregates behind reports and health checks.
type ReportingRepository interface {
	// AccountActivity sums lines per account: before periodStart as opening, and
	// from periodStart up to and including asOf as period activity.
	AccountActivity(ctx context.Context, tenantID string, periodStart, asOf time.Time) ([]domain.AccountActivity, error)
	// BookOpening sums the account's lines posted before the given instant.
	BookOpening(ctx context.Context, tenantID, accountID string, before time.Time, filter domain.ClearedFilter) (debit, credit decimal.Decimal, err error)
	// BookEntries returns the account's lines in [from, to] ordered by posting time, then insertion order.
	BookEntries(ctx context.Context, tenantID, accountID string, from, to time.Time, filter domain.ClearedFilter) ([]domain.BookEntry, error)
	// ARInvoiceBalances aggregates AR account lines per customer and invoice.
	// customerID and asOf are optional filters.
	ARInvoiceBalances(ctx context.Context, tenantID, arAccountID, customerID string, asOf *time.Time) ([]domain.ARInvoiceBalance, error)
	UnbalancedJournals(ctx context.Context, tenantID string) ([]domain.UnbalancedJournal, error)
	NegativeStockItems(ctx context.Context, tenantID string) ([]domain.NegativeStockItem, error)
}
