package services_test

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// --- Mock AccountMapRepository ---
type MockAccountMapRepository struct {
	mock.Mock
}

var _ portsrepo.AccountMapRepository = (*MockAccountMapRepository)(nil)

func (m *MockAccountMapRepository) FindEntries(ctx context.Context, tenantID string, keys []string) (map[string]string, error) {
	args := m.Called(ctx, tenantID, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockAccountMapRepository) ListEntries(ctx context.Context, tenantID string) ([]domain.AccountMapEntry, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountMapEntry), args.Error(1)
}

func (m *MockAccountMapRepository) UpsertEntry(ctx context.Context, entry domain.AccountMapEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) InsertJournal(ctx context.Context, journal domain.Journal) (domain.PostResult, error) {
	args := m.Called(ctx, journal)
	return args.Get(0).(domain.PostResult), args.Error(1)
}

func (m *MockJournalRepository) FindJournalByID(ctx context.Context, tenantID, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, tenantID, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) ListJournals(ctx context.Context, tenantID string, filter domain.JournalFilter) ([]domain.Journal, *string, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var next *string
	if args.Get(1) != nil {
		token := args.Get(1).(string)
		next = &token
	}
	return args.Get(0).([]domain.Journal), next, args.Error(2)
}

func (m *MockJournalRepository) SetLinesCleared(ctx context.Context, tenantID string, lineIDs []string, cleared bool) (int64, error) {
	args := m.Called(ctx, tenantID, lineIDs, cleared)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock DocumentLocker ---
// MockLocker records the document and, unless told to fail, runs fn.
type MockLocker struct {
	mock.Mock
}

var _ portsrepo.DocumentLocker = (*MockLocker)(nil)

func (m *MockLocker) WithDocumentLock(ctx context.Context, doc domain.DocumentRef, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, doc)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

// passthroughTx runs fn without a real transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
