package repositories

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// AccountReader defines read operations for accounts.
type AccountReader interface {
	FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)
	// FindAccountsByIDs returns the tenant's accounts among ids. Unknown ids are simply absent.
	FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for accounts.
type AccountWriter interface {
	// SaveAccount inserts an account. A duplicate code for the tenant fails with apperrors.ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines account reads and writes.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}

// AccountMapRepository stores logical key bindings.
type AccountMapRepository interface {
	// FindEntries returns key -> account id for the keys that have entries.
	FindEntries(ctx context.Context, tenantID string, keys []string) (map[string]string, error)
	ListEntries(ctx context.Context, tenantID string) ([]domain.AccountMapEntry, error)
	UpsertEntry(ctx context.Context, entry domain.AccountMapEntry) error
}
