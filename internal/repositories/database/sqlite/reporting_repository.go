package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type reportingRepository struct {
	BaseRepository
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

func clearedClause(filter domain.ClearedFilter) string {
	switch filter {
	case domain.ClearedOnly:
		return " AND l.cleared = 1"
	case domain.ClearedUncleared:
		return " AND l.cleared = 0"
	}
	return ""
}

func (r *reportingRepository) AccountActivity(ctx context.Context, tenantID string, periodStart, asOf time.Time) ([]domain.AccountActivity, error) {
	rows, err := r.q(ctx).QueryContext(ctx, `
		SELECT
			a.account_id, a.code, a.name, a.account_type, a.normal_side, a.level,
			COALESCE(SUM(CASE WHEN j.posted_at < ?2 THEN l.debit ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN j.posted_at < ?2 THEN l.credit ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN j.posted_at >= ?2 THEN l.debit ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN j.posted_at >= ?2 THEN l.credit ELSE 0 END), 0)
		FROM journal_lines l
		JOIN journals j ON j.journal_id = l.journal_id
		JOIN accounts a ON a.account_id = l.account_id
		WHERE l.tenant_id = ?1 AND j.posted_at <= ?3
		GROUP BY a.account_id, a.code, a.name, a.account_type, a.normal_side, a.level
		ORDER BY a.code
	`, tenantID, toMicros(periodStart), toMicros(asOf))
	if err != nil {
		return nil, fmt.Errorf("error querying account activity: %w", err)
	}
	defer rows.Close()

	result := []domain.AccountActivity{}
	for rows.Next() {
		var row domain.AccountActivity
		var accountType, normalSide string
		var od, oc, pd, pc int64
		if err := rows.Scan(&row.AccountID, &row.Code, &row.Name, &accountType, &normalSide, &row.Level, &od, &oc, &pd, &pc); err != nil {
			return nil, fmt.Errorf("error scanning account activity row: %w", err)
		}
		row.AccountType = domain.AccountType(accountType)
		row.NormalSide = domain.Side(normalSide)
		row.OpeningDebit, row.OpeningCredit = fromFixed(od), fromFixed(oc)
		row.PeriodDebit, row.PeriodCredit = fromFixed(pd), fromFixed(pc)
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *reportingRepository) BookOpening(ctx context.Context, tenantID, accountID string, before time.Time, filter domain.ClearedFilter) (decimal.Decimal, decimal.Decimal, error) {
	var debit, credit int64
	err := r.q(ctx).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journals j ON j.journal_id = l.journal_id
		WHERE l.tenant_id = ? AND l.account_id = ? AND j.posted_at < ?`+clearedClause(filter),
		tenantID, accountID, toMicros(before)).Scan(&debit, &credit)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("error querying book opening: %w", err)
	}
	return fromFixed(debit), fromFixed(credit), nil
}

func (r *reportingRepository) BookEntries(ctx context.Context, tenantID, accountID string, from, to time.Time, filter domain.ClearedFilter) ([]domain.BookEntry, error) {
	rows, err := r.q(ctx).QueryContext(ctx, `
		SELECT j.journal_id, COALESCE(j.journal_number, ''), l.line_id, j.posted_at,
			j.ref_table, j.ref_id, COALESCE(NULLIF(l.memo, ''), j.memo), l.debit, l.credit, l.cleared
		FROM journal_lines l
		JOIN journals j ON j.journal_id = l.journal_id
		WHERE l.tenant_id = ? AND l.account_id = ? AND j.posted_at >= ? AND j.posted_at <= ?`+clearedClause(filter)+`
		ORDER BY j.posted_at, j.seq, l.line_no`,
		tenantID, accountID, toMicros(from), toMicros(to))
	if err != nil {
		return nil, fmt.Errorf("error querying book entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.BookEntry{}
	for rows.Next() {
		var e domain.BookEntry
		var postedAt, debit, credit int64
		if err := rows.Scan(&e.JournalID, &e.JournalNumber, &e.LineID, &postedAt, &e.RefTable, &e.RefID, &e.Memo, &debit, &credit, &e.Cleared); err != nil {
			return nil, fmt.Errorf("error scanning book entry: %w", err)
		}
		e.PostedAt = fromMicros(postedAt)
		e.Debit, e.Credit = fromFixed(debit), fromFixed(credit)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *reportingRepository) ARInvoiceBalances(ctx context.Context, tenantID, arAccountID, customerID string, asOf *time.Time) ([]domain.ARInvoiceBalance, error) {
	query := `
		SELECT l.party_id, l.ref_id,
			COALESCE(MIN(CASE WHEN l.debit > 0 THEN j.posted_at END), MIN(j.posted_at)) AS invoice_date,
			COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journals j ON j.journal_id = l.journal_id
		WHERE l.tenant_id = ? AND l.account_id = ? AND l.party_id <> '' AND l.ref_table = ?`
	args := []any{tenantID, arAccountID, domain.RefSalesInvoice}
	if customerID != "" {
		query += " AND l.party_id = ?"
		args = append(args, customerID)
	}
	if asOf != nil {
		query += " AND j.posted_at <= ?"
		args = append(args, toMicros(*asOf))
	}
	query += `
		GROUP BY l.party_id, l.ref_id
		ORDER BY l.party_id, invoice_date, l.ref_id`

	rows, err := r.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying receivables: %w", err)
	}
	defer rows.Close()

	balances := []domain.ARInvoiceBalance{}
	for rows.Next() {
		var b domain.ARInvoiceBalance
		var invoiceDate, invoiced, collected int64
		if err := rows.Scan(&b.CustomerID, &b.InvoiceID, &invoiceDate, &invoiced, &collected); err != nil {
			return nil, fmt.Errorf("error scanning receivable row: %w", err)
		}
		b.InvoiceDate = fromMicros(invoiceDate)
		b.Invoiced, b.Collected = fromFixed(invoiced), fromFixed(collected)
		b.Due = b.Invoiced.Sub(b.Collected)
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (r *reportingRepository) UnbalancedJournals(ctx context.Context, tenantID string) ([]domain.UnbalancedJournal, error) {
	rows, err := r.q(ctx).QueryContext(ctx, `
		SELECT j.journal_id, COALESCE(j.journal_number, ''),
			COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journals j
		LEFT JOIN journal_lines l ON l.journal_id = j.journal_id
		WHERE j.tenant_id = ?
		GROUP BY j.journal_id, j.journal_number, j.posted_at, j.seq
		HAVING COALESCE(SUM(l.debit), 0) <> COALESCE(SUM(l.credit), 0) OR COUNT(l.line_id) = 0
		ORDER BY j.posted_at, j.seq
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error querying unbalanced journals: %w", err)
	}
	defer rows.Close()

	result := []domain.UnbalancedJournal{}
	for rows.Next() {
		var u domain.UnbalancedJournal
		var debit, credit int64
		if err := rows.Scan(&u.JournalID, &u.JournalNumber, &debit, &credit); err != nil {
			return nil, fmt.Errorf("error scanning unbalanced journal: %w", err)
		}
		u.TotalDebit, u.TotalCredit = fromFixed(debit), fromFixed(credit)
		u.Imbalance = u.TotalDebit.Sub(u.TotalCredit)
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *reportingRepository) NegativeStockItems(ctx context.Context, tenantID string) ([]domain.NegativeStockItem, error) {
	rows, err := r.q(ctx).QueryContext(ctx, `
		SELECT product_id, SUM(qty_in - qty_out), MAX(moved_at)
		FROM stock_moves
		WHERE tenant_id = ?
		GROUP BY product_id
		HAVING SUM(qty_in - qty_out) < 0
		ORDER BY product_id
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error querying negative stock: %w", err)
	}
	defer rows.Close()

	result := []domain.NegativeStockItem{}
	for rows.Next() {
		var item domain.NegativeStockItem
		var onHand, lastMoved int64
		if err := rows.Scan(&item.ProductID, &onHand, &lastMoved); err != nil {
			return nil, fmt.Errorf("error scanning negative stock row: %w", err)
		}
		item.OnHand = fromFixed(onHand)
		item.LastMovedAt = fromMicros(lastMoved)
		result = append(result, item)
	}
	return result, rows.Err()
}
