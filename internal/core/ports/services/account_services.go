package services

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
)

// AccountReaderSvc defines read operations for accounts.
type AccountReaderSvc interface {
	GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)
}

// AccountWriterSvc defines chart-of-accounts management.
type AccountWriterSvc interface {
	CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest) (*domain.Account, error)
}

// AccountSvcFacade combines account reads and writes.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}

// AccountMapSvc resolves logical keys to accounts.
type AccountMapSvc interface {
	// Resolve fails with a ConfigurationError when the key has no entry. There is no fallback account.
	Resolve(ctx context.Context, tenantID, logicalKey string) (string, error)
	// ResolveMany resolves every key or fails listing all missing ones.
	ResolveMany(ctx context.Context, tenantID string, logicalKeys ...string) (map[string]string, error)
	ListMissingKeys(ctx context.Context, tenantID string, requiredKeys []string) ([]domain.MissingMapKey, error)
	SetEntry(ctx context.Context, tenantID, logicalKey, accountID string) (*domain.AccountMapEntry, error)
	ListEntries(ctx context.Context, tenantID string) ([]domain.AccountMapEntry, error)
}
