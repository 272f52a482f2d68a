package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/SscSPs/bizledger/internal/models"
	"github.com/SscSPs/bizledger/internal/utils/mapping"
	"github.com/SscSPs/bizledger/internal/utils/pagination"
)

type journalRepository struct {
	BaseRepository
}

var _ portsrepo.JournalRepositoryFacade = (*journalRepository)(nil)

const journalColumns = `journal_id, seq, tenant_id, journal_number, journal_type, posted_at, memo, ref_table, ref_id, ref_discriminator, created_at`

func scanJournal(row rowScanner) (models.Journal, error) {
	var m models.Journal
	var number sql.NullString
	var postedAt, createdAt int64
	err := row.Scan(&m.JournalID, &m.Seq, &m.TenantID, &number, &m.JournalType, &postedAt, &m.Memo, &m.RefTable, &m.RefID, &m.RefDiscriminator, &createdAt)
	if err != nil {
		return m, err
	}
	if number.Valid {
		m.JournalNumber = &number.String
	}
	m.PostedAt = fromMicros(postedAt)
	m.CreatedAt = fromMicros(createdAt)
	return m, nil
}

// InsertJournal writes header and lines in one transaction. A conflicting idempotency
// key leaves the insert a no-op and the stored journal is reported instead.
func (r *journalRepository) InsertJournal(ctx context.Context, journal domain.Journal) (domain.PostResult, error) {
	var result domain.PostResult

	err := r.RunInTx(ctx, func(ctx context.Context) error {
		q := r.q(ctx)
		m := mapping.ToModelJournal(journal)

		res, err := q.ExecContext(ctx, `
			INSERT INTO journals (journal_id, tenant_id, journal_type, posted_at, memo, ref_table, ref_id, ref_discriminator, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (tenant_id, ref_table, ref_id, ref_discriminator) DO NOTHING;
		`, m.JournalID, m.TenantID, m.JournalType, toMicros(m.PostedAt), m.Memo, m.RefTable, m.RefID, m.RefDiscriminator, toMicros(m.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert journal %s: %w", m.JournalID, mapSQLiteError(err))
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read insert result: %w", err)
		}

		if inserted == 0 {
			existing, err := scanJournal(q.QueryRowContext(ctx, `
				SELECT `+journalColumns+` FROM journals
				WHERE tenant_id = ? AND ref_table = ? AND ref_id = ? AND ref_discriminator = ?;
			`, m.TenantID, m.RefTable, m.RefID, m.RefDiscriminator))
			if err != nil {
				return fmt.Errorf("failed to load existing journal for %s/%s: %w", m.RefTable, m.RefID, err)
			}
			d := mapping.ToDomainJournal(existing)
			result = domain.PostResult{JournalID: d.JournalID, JournalNumber: d.JournalNumber, Outcome: domain.AlreadyExisted}
			return nil
		}

		if _, err := q.ExecContext(ctx, `
			INSERT INTO journal_sequences (tenant_id, last_value) VALUES (?, 1)
			ON CONFLICT (tenant_id) DO UPDATE SET last_value = journal_sequences.last_value + 1;
		`, m.TenantID); err != nil {
			return fmt.Errorf("failed to allocate journal number: %w", mapSQLiteError(err))
		}
		var next int64
		if err := q.QueryRowContext(ctx, `SELECT last_value FROM journal_sequences WHERE tenant_id = ?;`, m.TenantID).Scan(&next); err != nil {
			return fmt.Errorf("failed to read journal number: %w", err)
		}
		number := fmt.Sprintf("JV-%06d", next)
		if _, err := q.ExecContext(ctx, `UPDATE journals SET journal_number = ? WHERE journal_id = ?;`, number, m.JournalID); err != nil {
			return fmt.Errorf("failed to number journal %s: %w", m.JournalID, mapSQLiteError(err))
		}

		for _, line := range journal.Lines {
			l := mapping.ToModelJournalLine(journal.TenantID, line)
			amounts, err := toFixedAll(l.Debit, l.Credit)
			if err != nil {
				return fmt.Errorf("journal line %d of %s: %w", l.LineNo, m.JournalID, err)
			}
			_, err = q.ExecContext(ctx, `
				INSERT INTO journal_lines (line_id, journal_id, tenant_id, line_no, account_id, debit, credit, ref_table, ref_id, party_id, memo, cleared)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
			`, l.LineID, m.JournalID, l.TenantID, l.LineNo, l.AccountID, amounts[0], amounts[1], l.RefTable, l.RefID, l.PartyID, l.Memo, l.Cleared)
			if err != nil {
				return fmt.Errorf("failed to insert journal line %d of %s: %w", l.LineNo, m.JournalID, mapSQLiteError(err))
			}
		}

		result = domain.PostResult{JournalID: m.JournalID, JournalNumber: number, Outcome: domain.Created}
		return nil
	})
	return result, err
}

func (r *journalRepository) FindJournalByID(ctx context.Context, tenantID, journalID string) (*domain.Journal, error) {
	q := r.q(ctx)
	m, err := scanJournal(q.QueryRowContext(ctx, `SELECT `+journalColumns+` FROM journals WHERE tenant_id = ? AND journal_id = ?;`, tenantID, journalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("journal", journalID)
		}
		return nil, fmt.Errorf("failed to find journal %s: %w", journalID, err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT line_id, journal_id, tenant_id, line_no, account_id, debit, credit, ref_table, ref_id, party_id, memo, cleared
		FROM journal_lines WHERE journal_id = ? ORDER BY line_no;
	`, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines of journal %s: %w", journalID, err)
	}
	defer rows.Close()

	journal := mapping.ToDomainJournal(m)
	journal.Lines = []domain.JournalLine{}
	for rows.Next() {
		var l models.JournalLine
		var debit, credit int64
		if err := rows.Scan(&l.LineID, &l.JournalID, &l.TenantID, &l.LineNo, &l.AccountID, &debit, &credit, &l.RefTable, &l.RefID, &l.PartyID, &l.Memo, &l.Cleared); err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		l.Debit, l.Credit = fromFixed(debit), fromFixed(credit)
		journal.Lines = append(journal.Lines, mapping.ToDomainJournalLine(l))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &journal, nil
}

func (r *journalRepository) ListJournals(ctx context.Context, tenantID string, filter domain.JournalFilter) ([]domain.Journal, *string, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE tenant_id = ?`
	args := []any{tenantID}

	if filter.JournalType != "" {
		query += " AND journal_type = ?"
		args = append(args, filter.JournalType)
	}
	if filter.From != nil {
		query += " AND posted_at >= ?"
		args = append(args, toMicros(*filter.From))
	}
	if filter.To != nil {
		query += " AND posted_at <= ?"
		args = append(args, toMicros(*filter.To))
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		postedAt, seq, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "%s", err.Error())
		}
		query += " AND (posted_at, seq) > (?, ?)"
		args = append(args, toMicros(postedAt), seq)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query += " ORDER BY posted_at, seq LIMIT ?;"
	args = append(args, limit+1)

	rows, err := r.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list journals: %w", err)
	}
	defer rows.Close()

	journals := []domain.Journal{}
	for rows.Next() {
		m, err := scanJournal(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		journals = append(journals, mapping.ToDomainJournal(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	if len(journals) <= limit {
		return journals, nil, nil
	}
	journals = journals[:limit]
	last := journals[len(journals)-1]
	token := pagination.EncodeToken(last.PostedAt, last.Seq)
	return journals, &token, nil
}

func (r *journalRepository) SetLinesCleared(ctx context.Context, tenantID string, lineIDs []string, cleared bool) (int64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}
	args := append([]any{cleared, tenantID, cleared}, stringArgs(lineIDs)...)
	res, err := r.q(ctx).ExecContext(ctx, `
		UPDATE journal_lines SET cleared = ?
		WHERE tenant_id = ? AND cleared <> ? AND line_id IN (`+inClause(len(lineIDs))+`);
	`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update cleared flag: %w", err)
	}
	return res.RowsAffected()
}
