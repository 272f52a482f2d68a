package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/SscSPs/bizledger/internal/models"
	"github.com/SscSPs/bizledger/internal/utils/mapping"
)

type accountRepository struct {
	BaseRepository
}

var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

const accountColumns = `account_id, tenant_id, code, name, account_type, normal_side, level, parent_account_id, is_active, created_at, last_updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (models.Account, error) {
	var m models.Account
	var parentID sql.NullString
	var createdAt, updatedAt int64
	err := row.Scan(&m.AccountID, &m.TenantID, &m.Code, &m.Name, &m.AccountType, &m.NormalSide, &m.Level, &parentID, &m.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return m, err
	}
	if parentID.Valid {
		m.ParentAccountID = &parentID.String
	}
	m.CreatedAt = fromMicros(createdAt)
	m.LastUpdatedAt = fromMicros(updatedAt)
	return m, nil
}

func (r *accountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	_, err := r.q(ctx).ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, m.AccountID, m.TenantID, m.Code, m.Name, m.AccountType, m.NormalSide, m.Level, m.ParentAccountID, m.IsActive, toMicros(m.CreatedAt), toMicros(m.LastUpdatedAt))
	if err != nil {
		mapped := mapSQLiteError(err)
		if errors.Is(mapped, apperrors.ErrDuplicate) {
			return fmt.Errorf("%w: account with code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, mapped)
	}
	return nil
}

func (r *accountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	m, err := scanAccount(r.q(ctx).QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id = ? AND account_id = ?;`, tenantID, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account", accountID)
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

func (r *accountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	accounts := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return accounts, nil
	}

	args := append([]any{tenantID}, stringArgs(accountIDs)...)
	rows, err := r.q(ctx).QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id = ? AND account_id IN (`+inClause(len(accountIDs))+`);`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts[m.AccountID] = mapping.ToDomainAccount(m)
	}
	return accounts, rows.Err()
}

func (r *accountRepository) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	rows, err := r.q(ctx).QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id = ? ORDER BY code;`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, mapping.ToDomainAccount(m))
	}
	return accounts, rows.Err()
}

type accountMapRepository struct {
	BaseRepository
}

var _ portsrepo.AccountMapRepository = (*accountMapRepository)(nil)

func (r *accountMapRepository) FindEntries(ctx context.Context, tenantID string, keys []string) (map[string]string, error) {
	entries := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return entries, nil
	}

	args := append([]any{tenantID}, stringArgs(keys)...)
	rows, err := r.q(ctx).QueryContext(ctx, `
		SELECT logical_key, account_id FROM account_map
		WHERE tenant_id = ? AND logical_key IN (`+inClause(len(keys))+`);
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query account map: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, accountID string
		if err := rows.Scan(&key, &accountID); err != nil {
			return nil, fmt.Errorf("failed to scan account map row: %w", err)
		}
		entries[key] = accountID
	}
	return entries, rows.Err()
}

func (r *accountMapRepository) ListEntries(ctx context.Context, tenantID string) ([]domain.AccountMapEntry, error) {
	rows, err := r.q(ctx).QueryContext(ctx, `
		SELECT tenant_id, logical_key, account_id, created_at, last_updated_at
		FROM account_map WHERE tenant_id = ? ORDER BY logical_key;
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account map: %w", err)
	}
	defer rows.Close()

	entries := []domain.AccountMapEntry{}
	for rows.Next() {
		var m models.AccountMapEntry
		var createdAt, updatedAt int64
		if err := rows.Scan(&m.TenantID, &m.LogicalKey, &m.AccountID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account map row: %w", err)
		}
		m.CreatedAt, m.LastUpdatedAt = fromMicros(createdAt), fromMicros(updatedAt)
		entries = append(entries, mapping.ToDomainAccountMapEntry(m))
	}
	return entries, rows.Err()
}

func (r *accountMapRepository) UpsertEntry(ctx context.Context, entry domain.AccountMapEntry) error {
	created := entry.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.q(ctx).ExecContext(ctx, `
		INSERT INTO account_map (tenant_id, logical_key, account_id, created_at, last_updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, logical_key)
		DO UPDATE SET account_id = excluded.account_id, last_updated_at = excluded.last_updated_at;
	`, entry.TenantID, entry.LogicalKey, entry.AccountID, toMicros(created), toMicros(entry.LastUpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert account map entry %s: %w", entry.LogicalKey, mapSQLiteError(err))
	}
	return nil
}
