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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, tenant_id, code, name, account_type, normal_side, level, parent_account_id, is_active, created_at, last_updated_at`

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.TenantID,
		&m.Code,
		&m.Name,
		&m.AccountType,
		&m.NormalSide,
		&m.Level,
		&m.ParentAccountID,
		&m.IsActive,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	return m, err
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.q(ctx).Exec(ctx, query,
		m.AccountID,
		m.TenantID,
		m.Code,
		m.Name,
		m.AccountType,
		m.NormalSide,
		m.Level,
		m.ParentAccountID,
		m.IsActive,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		mapped := mapPgError(err)
		if errors.Is(mapped, apperrors.ErrDuplicate) {
			return fmt.Errorf("%w: account with code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, mapped)
	}
	return nil
}

// FindAccountByID retrieves a tenant's account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_id = $2;`

	m, err := scanAccount(r.q(ctx).QueryRow(ctx, query, tenantID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account", accountID)
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_id = ANY($2);`
	rows, err := r.q(ctx).Query(ctx, query, tenantID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(accountIDs))
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts[m.AccountID] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// ListAccounts returns the tenant's chart of accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 ORDER BY code;`
	rows, err := r.q(ctx).Query(ctx, query, tenantID)
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

type PgxAccountMapRepository struct {
	BaseRepository
}

func newPgxAccountMapRepository(pool *pgxpool.Pool) *PgxAccountMapRepository {
	return &PgxAccountMapRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountMapRepository = (*PgxAccountMapRepository)(nil)

// FindEntries returns the account bound to each of keys that has an entry.
func (r *PgxAccountMapRepository) FindEntries(ctx context.Context, tenantID string, keys []string) (map[string]string, error) {
	entries := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return entries, nil
	}

	rows, err := r.q(ctx).Query(ctx, `
		SELECT logical_key, account_id FROM account_map
		WHERE tenant_id = $1 AND logical_key = ANY($2);
	`, tenantID, keys)
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

// ListEntries returns every binding of the tenant ordered by key.
func (r *PgxAccountMapRepository) ListEntries(ctx context.Context, tenantID string) ([]domain.AccountMapEntry, error) {
	rows, err := r.q(ctx).Query(ctx, `
		SELECT tenant_id, logical_key, account_id, created_at, last_updated_at
		FROM account_map WHERE tenant_id = $1 ORDER BY logical_key;
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account map: %w", err)
	}
	defer rows.Close()

	entries := []domain.AccountMapEntry{}
	for rows.Next() {
		var m models.AccountMapEntry
		if err := rows.Scan(&m.TenantID, &m.LogicalKey, &m.AccountID, &m.CreatedAt, &m.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account map row: %w", err)
		}
		entries = append(entries, mapping.ToDomainAccountMapEntry(m))
	}
	return entries, rows.Err()
}

// UpsertEntry binds a logical key to an account, replacing any previous binding.
func (r *PgxAccountMapRepository) UpsertEntry(ctx context.Context, entry domain.AccountMapEntry) error {
	_, err := r.q(ctx).Exec(ctx, `
		INSERT INTO account_map (tenant_id, logical_key, account_id, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, logical_key)
		DO UPDATE SET account_id = EXCLUDED.account_id, last_updated_at = EXCLUDED.last_updated_at;
	`, entry.TenantID, entry.LogicalKey, entry.AccountID, entry.CreatedAt, entry.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert account map entry %s: %w", entry.LogicalKey, mapPgError(err))
	}
	return nil
}
