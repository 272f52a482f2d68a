package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/platform/metrics"
	"github.com/SscSPs/bizledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// reportingService builds read-only reports over the journal and stock ledgers.
type reportingService struct {
	BaseService
	accountRepo   portsrepo.AccountReader
	reportingRepo portsrepo.ReportingRepository
	accountMap    portssvc.AccountMapSvc
	metrics       *metrics.Metrics
}

// NewReportingService creates a new ReportingService.
func NewReportingService(accountRepo portsrepo.AccountReader, reportingRepo portsrepo.ReportingRepository, accountMap portssvc.AccountMapSvc, m *metrics.Metrics) portssvc.ReportingService {
	return &reportingService{
		accountRepo:   accountRepo,
		reportingRepo: reportingRepo,
		accountMap:    accountMap,
		metrics:       m,
	}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

// TrialBalance reports every account with activity up to asOf.
// A closing balance on the side opposite the account's normal side is shown there and flagged.
func (s *reportingService) TrialBalance(ctx context.Context, tenantID string, periodStart, asOf time.Time) (*domain.TrialBalanceReport, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	if periodStart.After(asOf) {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "period start is after as-of date")
	}

	activity, err := s.reportingRepo.AccountActivity(ctx, tenantID, periodStart, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate account activity", slog.String("tenant_id", tenantID))
		return nil, err
	}

	report := &domain.TrialBalanceReport{
		TenantID:    tenantID,
		PeriodStart: periodStart,
		AsOf:        asOf,
		Rows:        make([]domain.TrialBalanceRow, 0, len(activity)),
		Totals: domain.TrialBalanceTotals{
			OpeningDebit:  decimal.Zero,
			OpeningCredit: decimal.Zero,
			PeriodDebit:   decimal.Zero,
			PeriodCredit:  decimal.Zero,
			ClosingDebit:  decimal.Zero,
			ClosingCredit: decimal.Zero,
		},
	}

	for _, a := range activity {
		openingNet := a.OpeningDebit.Sub(a.OpeningCredit)
		closingNet := openingNet.Add(a.PeriodDebit).Sub(a.PeriodCredit)
		openDr, openCr := accounting.SplitNet(openingNet)
		closeDr, closeCr := accounting.SplitNet(closingNet)

		row := domain.TrialBalanceRow{
			AccountID:     a.AccountID,
			AccountCode:   a.Code,
			AccountName:   a.Name,
			AccountType:   a.AccountType,
			NormalSide:    a.NormalSide,
			Level:         a.Level,
			OpeningDebit:  openDr,
			OpeningCredit: openCr,
			PeriodDebit:   a.PeriodDebit,
			PeriodCredit:  a.PeriodCredit,
			ClosingDebit:  closeDr,
			ClosingCredit: closeCr,
			Abnormal: (a.NormalSide == domain.Debit && closeCr.IsPositive()) ||
				(a.NormalSide == domain.Credit && closeDr.IsPositive()),
		}
		report.Rows = append(report.Rows, row)

		t := &report.Totals
		t.OpeningDebit = t.OpeningDebit.Add(openDr)
		t.OpeningCredit = t.OpeningCredit.Add(openCr)
		t.PeriodDebit = t.PeriodDebit.Add(a.PeriodDebit)
		t.PeriodCredit = t.PeriodCredit.Add(a.PeriodCredit)
		t.ClosingDebit = t.ClosingDebit.Add(closeDr)
		t.ClosingCredit = t.ClosingCredit.Add(closeCr)
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		return report.Rows[i].AccountCode < report.Rows[j].AccountCode
	})
	return report, nil
}

// Book lists an account's lines in [from, to] with a running balance in the account's normal-side sign.
// The cleared filter applies to the opening balance as well as to the rows.
func (s *reportingService) Book(ctx context.Context, tenantID, accountID string, from, to time.Time, filter domain.ClearedFilter) (*domain.BookReport, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	if filter == "" {
		filter = domain.ClearedAll
	}
	if !filter.Valid() {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "unknown cleared filter %q", filter)
	}
	if from.After(to) {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "from is after to")
	}

	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	openDr, openCr, err := s.reportingRepo.BookOpening(ctx, tenantID, accountID, from, filter)
	if err != nil {
		return nil, err
	}
	entries, err := s.reportingRepo.BookEntries(ctx, tenantID, accountID, from, to, filter)
	if err != nil {
		return nil, err
	}

	report := &domain.BookReport{
		AccountID:   account.AccountID,
		AccountName: account.Name,
		NormalSide:  account.NormalSide,
		From:        from,
		To:          to,
		Filter:      filter,
		Opening:     accounting.Signed(openDr, openCr, account.NormalSide),
		Rows:        make([]domain.BookRow, 0, len(entries)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	running := report.Opening
	for _, e := range entries {
		running = running.Add(accounting.Signed(e.Debit, e.Credit, account.NormalSide))
		report.TotalDebit = report.TotalDebit.Add(e.Debit)
		report.TotalCredit = report.TotalCredit.Add(e.Credit)

		ref := e.JournalNumber
		if e.RefID != "" {
			ref = e.RefTable + "/" + e.RefID
		}
		report.Rows = append(report.Rows, domain.BookRow{
			JournalID:      e.JournalID,
			JournalNumber:  e.JournalNumber,
			LineID:         e.LineID,
			Date:           e.PostedAt,
			Ref:            ref,
			Memo:           e.Memo,
			Debit:          e.Debit,
			Credit:         e.Credit,
			RunningBalance: running,
			Cleared:        e.Cleared,
		})
	}
	report.Closing = running
	return report, nil
}

// ARRollup sums receivables per customer and invoice from the AR account.
func (s *reportingService) ARRollup(ctx context.Context, tenantID, customerID string) (*domain.ARRollupReport, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	arAccountID, err := s.accountMap.Resolve(ctx, tenantID, domain.KeyAR)
	if err != nil {
		return nil, err
	}
	balances, err := s.reportingRepo.ARInvoiceBalances(ctx, tenantID, arAccountID, customerID, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate receivables", slog.String("tenant_id", tenantID))
		return nil, err
	}

	report := &domain.ARRollupReport{
		TenantID:  tenantID,
		Customers: []domain.ARCustomerSummary{},
		Totals:    newCustomerSummary(""),
	}
	byCustomer := make(map[string]int)
	for _, b := range balances {
		i, ok := byCustomer[b.CustomerID]
		if !ok {
			i = len(report.Customers)
			byCustomer[b.CustomerID] = i
			report.Customers = append(report.Customers, newCustomerSummary(b.CustomerID))
		}
		addInvoice(&report.Customers[i], b)
		addInvoice(&report.Totals, b)
	}
	report.Totals.Invoices = nil

	sort.Slice(report.Customers, func(i, j int) bool {
		return report.Customers[i].CustomerID < report.Customers[j].CustomerID
	})
	return report, nil
}

func newCustomerSummary(customerID string) domain.ARCustomerSummary {
	return domain.ARCustomerSummary{
		CustomerID: customerID,
		Invoiced:   decimal.Zero,
		Collected:  decimal.Zero,
		Due:        decimal.Zero,
		Invoices:   []domain.ARInvoiceBalance{},
	}
}

func addInvoice(sum *domain.ARCustomerSummary, b domain.ARInvoiceBalance) {
	sum.Invoiced = sum.Invoiced.Add(b.Invoiced)
	sum.Collected = sum.Collected.Add(b.Collected)
	sum.Due = sum.Due.Add(b.Due)
	if b.Due.IsPositive() {
		sum.OpenInvoiceCount++
	}
	sum.Invoices = append(sum.Invoices, b)
}

// ARAging buckets open invoice dues by days past invoice date plus terms.
func (s *reportingService) ARAging(ctx context.Context, tenantID string, asOf time.Time, termsDays int) (*domain.ARAgingReport, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	if termsDays < 0 {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "terms must not be negative")
	}
	arAccountID, err := s.accountMap.Resolve(ctx, tenantID, domain.KeyAR)
	if err != nil {
		return nil, err
	}
	balances, err := s.reportingRepo.ARInvoiceBalances(ctx, tenantID, arAccountID, "", &asOf)
	if err != nil {
		return nil, err
	}

	report := &domain.ARAgingReport{
		TenantID:  tenantID,
		AsOf:      asOf,
		TermsDays: termsDays,
		Rows:      []domain.ARAgingRow{},
		Totals:    newAgingRow(""),
	}
	byCustomer := make(map[string]int)
	for _, b := range balances {
		if !b.Due.IsPositive() {
			continue
		}
		i, ok := byCustomer[b.CustomerID]
		if !ok {
			i = len(report.Rows)
			byCustomer[b.CustomerID] = i
			report.Rows = append(report.Rows, newAgingRow(b.CustomerID))
		}
		overdue := daysOverdue(b.InvoiceDate.AddDate(0, 0, termsDays), asOf)
		addAging(&report.Rows[i], overdue, b.Due)
		addAging(&report.Totals, overdue, b.Due)
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].CustomerID < report.Rows[j].CustomerID
	})
	return report, nil
}

func newAgingRow(customerID string) domain.ARAgingRow {
	return domain.ARAgingRow{
		CustomerID: customerID,
		Current:    decimal.Zero,
		Days1To15:  decimal.Zero,
		Days16To30: decimal.Zero,
		Days31To45: decimal.Zero,
		Over45:     decimal.Zero,
		Total:      decimal.Zero,
	}
}

// daysOverdue counts whole days from due to asOf. Not yet due is zero.
func daysOverdue(due, asOf time.Time) int {
	if !asOf.After(due) {
		return 0
	}
	return int(asOf.Sub(due).Hours() / 24)
}

func addAging(row *domain.ARAgingRow, overdue int, amount decimal.Decimal) {
	switch {
	case overdue <= 0:
		row.Current = row.Current.Add(amount)
	case overdue <= 15:
		row.Days1To15 = row.Days1To15.Add(amount)
	case overdue <= 30:
		row.Days16To30 = row.Days16To30.Add(amount)
	case overdue <= 45:
		row.Days31To45 = row.Days31To45.Add(amount)
	default:
		row.Over45 = row.Over45.Add(amount)
	}
	row.Total = row.Total.Add(amount)
}

// ProfitAndLoss reports income and expense activity within [from, to].
func (s *reportingService) ProfitAndLoss(ctx context.Context, tenantID string, from, to time.Time) (*domain.PAndLReport, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "from is after to")
	}
	activity, err := s.reportingRepo.AccountActivity(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	report := &domain.PAndLReport{
		From:      from,
		To:        to,
		Income:    []domain.AccountAmount{},
		Expenses:  []domain.AccountAmount{},
		NetProfit: decimal.Zero,
	}
	for _, a := range activity {
		switch a.AccountType {
		case domain.Income:
			net := a.PeriodCredit.Sub(a.PeriodDebit)
			if net.IsZero() {
				continue
			}
			report.Income = append(report.Income, accountAmount(a, net))
			report.NetProfit = report.NetProfit.Add(net)
		case domain.Expense:
			net := a.PeriodDebit.Sub(a.PeriodCredit)
			if net.IsZero() {
				continue
			}
			report.Expenses = append(report.Expenses, accountAmount(a, net))
			report.NetProfit = report.NetProfit.Sub(net)
		}
	}
	return report, nil
}

// BalanceSheet reports asset, liability and equity balances at asOf.
// Income less expense to date is shown as retained earnings.
func (s *reportingService) BalanceSheet(ctx context.Context, tenantID string, asOf time.Time) (*domain.BalanceSheetReport, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	activity, err := s.reportingRepo.AccountActivity(ctx, tenantID, time.Time{}, asOf)
	if err != nil {
		return nil, err
	}

	report := &domain.BalanceSheetReport{
		AsOf:             asOf,
		Assets:           []domain.AccountAmount{},
		Liabilities:      []domain.AccountAmount{},
		Equity:           []domain.AccountAmount{},
		RetainedEarnings: decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	for _, a := range activity {
		debit := a.OpeningDebit.Add(a.PeriodDebit)
		credit := a.OpeningCredit.Add(a.PeriodCredit)
		switch a.AccountType {
		case domain.Asset:
			net := debit.Sub(credit)
			report.Assets = append(report.Assets, accountAmount(a, net))
			report.TotalAssets = report.TotalAssets.Add(net)
		case domain.Liability:
			net := credit.Sub(debit)
			report.Liabilities = append(report.Liabilities, accountAmount(a, net))
			report.TotalLiabilities = report.TotalLiabilities.Add(net)
		case domain.Equity:
			net := credit.Sub(debit)
			report.Equity = append(report.Equity, accountAmount(a, net))
			report.TotalEquity = report.TotalEquity.Add(net)
		case domain.Income:
			report.RetainedEarnings = report.RetainedEarnings.Add(credit.Sub(debit))
		case domain.Expense:
			report.RetainedEarnings = report.RetainedEarnings.Sub(debit.Sub(credit))
		}
	}
	report.TotalEquity = report.TotalEquity.Add(report.RetainedEarnings)
	return report, nil
}

func accountAmount(a domain.AccountActivity, net decimal.Decimal) domain.AccountAmount {
	return domain.AccountAmount{AccountID: a.AccountID, Code: a.Code, Name: a.Name, NetAmount: net}
}

// UnbalancedJournals lists journals whose lines do not balance. Only a write that
// bypassed the journal engine can produce one.
func (s *reportingService) UnbalancedJournals(ctx context.Context, tenantID string) ([]domain.UnbalancedJournal, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	return s.reportingRepo.UnbalancedJournals(ctx, tenantID)
}

func (s *reportingService) NegativeStockItems(ctx context.Context, tenantID string) ([]domain.NegativeStockItem, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	return s.reportingRepo.NegativeStockItems(ctx, tenantID)
}

func (s *reportingService) MissingAccountMapKeys(ctx context.Context, tenantID string, requiredKeys []string) ([]domain.MissingMapKey, error) {
	return s.accountMap.ListMissingKeys(ctx, tenantID, requiredKeys)
}

// RunHealthChecks runs all integrity checks and reports what they found.
func (s *reportingService) RunHealthChecks(ctx context.Context, tenantID string, requiredKeys []string) (*domain.HealthReport, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	unbalanced, err := s.UnbalancedJournals(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	negative, err := s.NegativeStockItems(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	missing, err := s.MissingAccountMapKeys(ctx, tenantID, requiredKeys)
	if err != nil {
		return nil, err
	}

	report := &domain.HealthReport{
		TenantID:           tenantID,
		CheckedAt:          time.Now().UTC(),
		UnbalancedJournals: unbalanced,
		NegativeStock:      negative,
		MissingKeys:        missing,
		Warnings:           []domain.IntegrityWarning{},
	}
	for _, j := range unbalanced {
		report.Warnings = append(report.Warnings, domain.IntegrityWarning{
			Check:   domain.CheckUnbalancedJournals,
			Subject: j.JournalID,
			Message: fmt.Sprintf("journal %s is off by %s", j.JournalNumber, j.Imbalance.String()),
		})
	}
	for _, n := range negative {
		report.Warnings = append(report.Warnings, domain.IntegrityWarning{
			Check:   domain.CheckNegativeStock,
			Subject: n.ProductID,
			Message: fmt.Sprintf("on hand is %s", n.OnHand.String()),
		})
	}
	for _, m := range missing {
		report.Warnings = append(report.Warnings, domain.IntegrityWarning{
			Check:   domain.CheckMissingMapKeys,
			Subject: m.LogicalKey,
			Message: "no account mapped",
		})
	}

	s.metrics.SetHealthFindings(tenantID, domain.CheckUnbalancedJournals, len(unbalanced))
	s.metrics.SetHealthFindings(tenantID, domain.CheckNegativeStock, len(negative))
	s.metrics.SetHealthFindings(tenantID, domain.CheckMissingMapKeys, len(missing))

	if !report.Healthy() {
		s.GetLogger(ctx).Warn("Ledger health checks found issues",
			slog.String("tenant_id", tenantID),
			slog.Int("warnings", len(report.Warnings)))
	}
	return report, nil
}
