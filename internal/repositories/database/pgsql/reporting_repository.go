package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) *reportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

func clearedClause(filter domain.ClearedFilter) string {
	switch filter {
	case domain.ClearedOnly:
		return " AND l.cleared"
	case domain.ClearedUncleared:
		return " AND NOT l.cleared"
	}
	return ""
}

// AccountActivity returns per-account sums for accounts with lines posted up to asOf.
func (r *reportingRepository) AccountActivity(ctx context.Context, tenantID string, periodStart, asOf time.Time) ([]domain.AccountActivity, error) {
	query := `
		SELECT
			a.account_id,
			a.code,
			a.name,
			a.account_type,
			a.normal_side,
			a.level,
			COALESCE(SUM(CASE WHEN j.posted_at < $2 THEN l.debit ELSE 0 END), 0) AS opening_debit,
			COALESCE(SUM(CASE WHEN j.posted_at < $2 THEN l.credit ELSE 0 END), 0) AS opening_credit,
			COALESCE(SUM(CASE WHEN j.posted_at >= $2 THEN l.debit ELSE 0 END), 0) AS period_debit,
			COALESCE(SUM(CASE WHEN j.posted_at >= $2 THEN l.credit ELSE 0 END), 0) AS period_credit
		FROM journal_lines l
		JOIN journals j ON j.journal_id = l.journal_id
		JOIN accounts a ON a.account_id = l.account_id
		WHERE l.tenant_id = $1
			AND j.posted_at <= $3
		GROUP BY a.account_id, a.code, a.name, a.account_type, a.normal_side, a.level
		ORDER BY a.code
	`

	rows, err := r.q(ctx).Query(ctx, query, tenantID, periodStart, asOf)
	if err != nil {
		return nil, fmt.Errorf("error querying account activity: %w", err)
	}
	defer rows.Close()

	result := []domain.AccountActivity{}
	for rows.Next() {
		var row domain.AccountActivity
		var accountType, normalSide string
		if err := rows.Scan(
			&row.AccountID,
			&row.Code,
			&row.Name,
			&accountType,
			&normalSide,
			&row.Level,
			&row.OpeningDebit,
			&row.OpeningCredit,
			&row.PeriodDebit,
			&row.PeriodCredit,
		); err != nil {
			return nil, fmt.Errorf("error scanning account activity row: %w", err)
		}
		row.AccountType = domain.AccountType(accountType)
		row.NormalSide = domain.Side(normalSide)
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account activity rows: %w", err)
	}
	return result, nil
}

// BookOpening sums the account's lines posted strictly before the cut.
func (r *reportingRepository) BookOpening(ctx context.Context, tenantID, accountID string, before time.Time, filter domain.ClearedFilter) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journals j ON j.journal_id = l.journal_id
		WHERE l.tenant_id = $1 AND l.account_id = $2 AND j.posted_at < $3` + clearedClause(filter)

	var debit, credit decimal.Decimal
	if err := r.q(ctx).QueryRow(ctx, query, tenantID, accountID, before).Scan(&debit, &credit); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("error querying book opening: %w", err)
	}
	return debit, credit, nil
}

// BookEntries lists the account's lines between from and to inclusive.
func (r *reportingRepository) BookEntries(ctx context.Context, tenantID, accountID string, from, to time.Time, filter domain.ClearedFilter) ([]domain.BookEntry, error) {
	query := `
		SELECT j.journal_id, COALESCE(j.journal_number, ''), l.line_id, j.posted_at,
			j.ref_table, j.ref_id, COALESCE(NULLIF(l.memo, ''), j.memo), l.debit, l.credit, l.cleared
		FROM journal_lines l
		JOIN journals j ON j.journal_id = l.journal_id
		WHERE l.tenant_id = $1 AND l.account_id = $2 AND j.posted_at >= $3 AND j.posted_at <= $4` + clearedClause(filter) + `
		ORDER BY j.posted_at, j.seq, l.line_no`

	rows, err := r.q(ctx).Query(ctx, query, tenantID, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying book entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.BookEntry{}
	for rows.Next() {
		var e domain.BookEntry
		if err := rows.Scan(&e.JournalID, &e.JournalNumber, &e.LineID, &e.PostedAt, &e.RefTable, &e.RefID, &e.Memo, &e.Debit, &e.Credit, &e.Cleared); err != nil {
			return nil, fmt.Errorf("error scanning book entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ARInvoiceBalances groups AR lines that carry a customer and an invoice reference.
func (r *reportingRepository) ARInvoiceBalances(ctx context.Context, tenantID, arAccountID, customerID string, asOf *time.Time) ([]domain.ARInvoiceBalance, error) {
	query := `
		SELECT l.party_id, l.ref_id,
			COALESCE(MIN(CASE WHEN l.debit > 0 THEN j.posted_at END), MIN(j.posted_at)) AS invoice_date,
			COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journals j ON j.journal_id = l.journal_id
		WHERE l.tenant_id = $1 AND l.account_id = $2 AND l.party_id <> '' AND l.ref_table = $3`
	args := []any{tenantID, arAccountID, domain.RefSalesInvoice}
	if customerID != "" {
		args = append(args, customerID)
		query += fmt.Sprintf(" AND l.party_id = $%d", len(args))
	}
	if asOf != nil {
		args = append(args, *asOf)
		query += fmt.Sprintf(" AND j.posted_at <= $%d", len(args))
	}
	query += `
		GROUP BY l.party_id, l.ref_id
		ORDER BY l.party_id, invoice_date, l.ref_id`

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying receivables: %w", err)
	}
	defer rows.Close()

	balances := []domain.ARInvoiceBalance{}
	for rows.Next() {
		var b domain.ARInvoiceBalance
		if err := rows.Scan(&b.CustomerID, &b.InvoiceID, &b.InvoiceDate, &b.Invoiced, &b.Collected); err != nil {
			return nil, fmt.Errorf("error scanning receivable row: %w", err)
		}
		b.Due = b.Invoiced.Sub(b.Collected)
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// UnbalancedJournals finds journals whose lines do not net to zero, or that have no lines.
func (r *reportingRepository) UnbalancedJournals(ctx context.Context, tenantID string) ([]domain.UnbalancedJournal, error) {
	query := `
		SELECT j.journal_id, COALESCE(j.journal_number, ''),
			COALESCE(SUM(l.debit), 0) AS total_debit, COALESCE(SUM(l.credit), 0) AS total_credit
		FROM journals j
		LEFT JOIN journal_lines l ON l.journal_id = j.journal_id
		WHERE j.tenant_id = $1
		GROUP BY j.journal_id, j.journal_number, j.posted_at, j.seq
		HAVING COALESCE(SUM(l.debit), 0) <> COALESCE(SUM(l.credit), 0) OR COUNT(l.line_id) = 0
		ORDER BY j.posted_at, j.seq`

	rows, err := r.q(ctx).Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error querying unbalanced journals: %w", err)
	}
	defer rows.Close()

	result := []domain.UnbalancedJournal{}
	for rows.Next() {
		var u domain.UnbalancedJournal
		if err := rows.Scan(&u.JournalID, &u.JournalNumber, &u.TotalDebit, &u.TotalCredit); err != nil {
			return nil, fmt.Errorf("error scanning unbalanced journal: %w", err)
		}
		u.Imbalance = u.TotalDebit.Sub(u.TotalCredit)
		result = append(result, u)
	}
	return result, rows.Err()
}

// NegativeStockItems computes on-hand per product in one pass and keeps the negatives.
func (r *reportingRepository) NegativeStockItems(ctx context.Context, tenantID string) ([]domain.NegativeStockItem, error) {
	query := `
		SELECT product_id, SUM(qty_in - qty_out) AS on_hand, MAX(moved_at) AS last_moved_at
		FROM stock_moves
		WHERE tenant_id = $1
		GROUP BY product_id
		HAVING SUM(qty_in - qty_out) < 0
		ORDER BY product_id`

	rows, err := r.q(ctx).Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error querying negative stock: %w", err)
	}
	defer rows.Close()

	result := []domain.NegativeStockItem{}
	for rows.Next() {
		var item domain.NegativeStockItem
		if err := rows.Scan(&item.ProductID, &item.OnHand, &item.LastMovedAt); err != nil {
			return nil, fmt.Errorf("error scanning negative stock row: %w", err)
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
