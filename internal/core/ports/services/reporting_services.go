package services

import (
	"context"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// ReportingService defines read-only ledger reports and integrity checks.
type ReportingService interface {
	// TrialBalance reports opening balances before periodStart and activity up to and including asOf.
	TrialBalance(ctx context.Context, tenantID string, periodStart, asOf time.Time) (*domain.TrialBalanceReport, error)
	Book(ctx context.Context, tenantID, accountID string, from, to time.Time, filter domain.ClearedFilter) (*domain.BookReport, error)
	// ARRollup aggregates receivables per customer and invoice. An empty customerID means all customers.
	ARRollup(ctx context.Context, tenantID, customerID string) (*domain.ARRollupReport, error)
	ARAging(ctx context.Context, tenantID string, asOf time.Time, termsDays int) (*domain.ARAgingReport, error)
	ProfitAndLoss(ctx context.Context, tenantID string, from, to time.Time) (*domain.PAndLReport, error)
	BalanceSheet(ctx context.Context, tenantID string, asOf time.Time) (*domain.BalanceSheetReport, error)

	UnbalancedJournals(ctx context.Context, tenantID string) ([]domain.UnbalancedJournal, error)
	NegativeStockItems(ctx context.Context, tenantID string) ([]domain.NegativeStockItem, error)
	MissingAccountMapKeys(ctx context.Context, tenantID string, requiredKeys []string) ([]domain.MissingMapKey, error)
	// RunHealthChecks runs every check and reports findings as warnings. It never repairs data.
	RunHealthChecks(ctx context.Context, tenantID string, requiredKeys []string) (*domain.HealthReport, error)
}
