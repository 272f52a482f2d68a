package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/SscSPs/bizledger/internal/models"
	"github.com/SscSPs/bizledger/internal/utils/mapping"
	"github.com/SscSPs/bizledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journals and their lines.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const journalColumns = `journal_id, seq, tenant_id, journal_number, journal_type, posted_at, memo, ref_table, ref_id, ref_discriminator, created_at`

func scanJournal(row pgx.Row) (models.Journal, error) {
	var m models.Journal
	err := row.Scan(
		&m.JournalID,
		&m.Seq,
		&m.TenantID,
		&m.JournalNumber,
		&m.JournalType,
		&m.PostedAt,
		&m.Memo,
		&m.RefTable,
		&m.RefID,
		&m.RefDiscriminator,
		&m.CreatedAt,
	)
	return m, err
}

// InsertJournal saves the header and lines in one transaction. The header insert
// is a no-op when the idempotency key already exists, and the existing journal is returned.
func (r *PgxJournalRepository) InsertJournal(ctx context.Context, journal domain.Journal) (domain.PostResult, error) {
	var result domain.PostResult

	err := r.RunInTx(ctx, func(ctx context.Context) error {
		q := r.q(ctx)
		m := mapping.ToModelJournal(journal)

		var seq int64
		err := q.QueryRow(ctx, `
			INSERT INTO journals (journal_id, tenant_id, journal_type, posted_at, memo, ref_table, ref_id, ref_discriminator, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT ON CONSTRAINT journals_idempotency_key DO NOTHING
			RETURNING seq;
		`, m.JournalID, m.TenantID, m.JournalType, m.PostedAt, m.Memo, m.RefTable, m.RefID, m.RefDiscriminator, m.CreatedAt).Scan(&seq)

		if errors.Is(err, pgx.ErrNoRows) {
			existing, err := r.findByKey(ctx, journal.TenantID, journal.Key)
			if err != nil {
				return err
			}
			result = domain.PostResult{JournalID: existing.JournalID, JournalNumber: existing.JournalNumber, Outcome: domain.AlreadyExisted}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to insert journal %s: %w", m.JournalID, mapPgError(err))
		}

		var next int64
		err = q.QueryRow(ctx, `
			INSERT INTO journal_sequences (tenant_id, last_value) VALUES ($1, 1)
			ON CONFLICT (tenant_id) DO UPDATE SET last_value = journal_sequences.last_value + 1
			RETURNING last_value;
		`, m.TenantID).Scan(&next)
		if err != nil {
			return fmt.Errorf("failed to allocate journal number: %w", mapPgError(err))
		}
		number := formatJournalNumber(next)
		if _, err := q.Exec(ctx, `UPDATE journals SET journal_number = $1 WHERE journal_id = $2;`, number, m.JournalID); err != nil {
			return fmt.Errorf("failed to number journal %s: %w", m.JournalID, mapPgError(err))
		}

		batch := &pgx.Batch{}
		lineQuery := `
			INSERT INTO journal_lines (line_id, journal_id, tenant_id, line_no, account_id, debit, credit, ref_table, ref_id, party_id, memo, cleared)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
		`
		for _, line := range journal.Lines {
			l := mapping.ToModelJournalLine(journal.TenantID, line)
			batch.Queue(lineQuery, l.LineID, m.JournalID, l.TenantID, l.LineNo, l.AccountID, l.Debit, l.Credit, l.RefTable, l.RefID, l.PartyID, l.Memo, l.Cleared)
		}
		br := q.SendBatch(ctx, batch)
		for range journal.Lines {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("failed to insert journal lines for %s: %w", m.JournalID, mapPgError(err))
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to close journal line batch: %w", err)
		}

		result = domain.PostResult{JournalID: m.JournalID, JournalNumber: number, Outcome: domain.Created}
		return nil
	})
	return result, err
}

func formatJournalNumber(n int64) string {
	return fmt.Sprintf("JV-%06d", n)
}

func (r *PgxJournalRepository) findByKey(ctx context.Context, tenantID string, key domain.IdempotencyKey) (domain.Journal, error) {
	m, err := scanJournal(r.q(ctx).QueryRow(ctx, `
		SELECT `+journalColumns+` FROM journals
		WHERE tenant_id = $1 AND ref_table = $2 AND ref_id = $3 AND ref_discriminator = $4;
	`, tenantID, key.RefTable, key.RefID, key.Discriminator))
	if err != nil {
		// The conflicting row must exist once ON CONFLICT skipped the insert.
		return domain.Journal{}, fmt.Errorf("failed to load existing journal for %s/%s: %w", key.RefTable, key.RefID, err)
	}
	return mapping.ToDomainJournal(m), nil
}

// FindJournalByID retrieves a journal with its lines.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, tenantID, journalID string) (*domain.Journal, error) {
	q := r.q(ctx)
	m, err := scanJournal(q.QueryRow(ctx, `SELECT `+journalColumns+` FROM journals WHERE tenant_id = $1 AND journal_id = $2;`, tenantID, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("journal", journalID)
		}
		return nil, fmt.Errorf("failed to find journal %s: %w", journalID, err)
	}

	rows, err := q.Query(ctx, `
		SELECT line_id, journal_id, tenant_id, line_no, account_id, debit, credit, ref_table, ref_id, party_id, memo, cleared
		FROM journal_lines WHERE journal_id = $1 ORDER BY line_no;
	`, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines of journal %s: %w", journalID, err)
	}
	defer rows.Close()

	journal := mapping.ToDomainJournal(m)
	journal.Lines = []domain.JournalLine{}
	for rows.Next() {
		var l models.JournalLine
		if err := rows.Scan(&l.LineID, &l.JournalID, &l.TenantID, &l.LineNo, &l.AccountID, &l.Debit, &l.Credit, &l.RefTable, &l.RefID, &l.PartyID, &l.Memo, &l.Cleared); err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		journal.Lines = append(journal.Lines, mapping.ToDomainJournalLine(l))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal lines: %w", err)
	}
	return &journal, nil
}

// ListJournals returns journal headers ordered by posting time then insertion order,
// with a token for the next page when more rows exist.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, tenantID string, filter domain.JournalFilter) ([]domain.Journal, *string, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.JournalType != "" {
		args = append(args, filter.JournalType)
		query += fmt.Sprintf(" AND journal_type = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND posted_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND posted_at <= $%d", len(args))
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		postedAt, seq, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "%s", err.Error())
		}
		args = append(args, postedAt, seq)
		query += fmt.Sprintf(" AND (posted_at, seq) > ($%d, $%d)", len(args)-1, len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY posted_at, seq LIMIT $%d;", len(args))

	rows, err := r.q(ctx).Query(ctx, query, args...)
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
		return nil, nil, fmt.Errorf("error iterating journal rows: %w", err)
	}

	return pageJournals(journals, limit)
}

// pageJournals trims the probe row and derives the next token from the last kept journal.
func pageJournals(journals []domain.Journal, limit int) ([]domain.Journal, *string, error) {
	if len(journals) <= limit {
		return journals, nil, nil
	}
	journals = journals[:limit]
	last := journals[len(journals)-1]
	token := pagination.EncodeToken(last.PostedAt, last.Seq)
	return journals, &token, nil
}

// SetLinesCleared updates the reconciliation flag of the tenant's lines.
func (r *PgxJournalRepository) SetLinesCleared(ctx context.Context, tenantID string, lineIDs []string, cleared bool) (int64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}
	tag, err := r.q(ctx).Exec(ctx, `
		UPDATE journal_lines SET cleared = $3
		WHERE tenant_id = $1 AND line_id = ANY($2) AND cleared <> $3;
	`, tenantID, lineIDs, cleared)
	if err != nil {
		return 0, fmt.Errorf("failed to update cleared flag: %w", err)
	}
	return tag.RowsAffected(), nil
}
