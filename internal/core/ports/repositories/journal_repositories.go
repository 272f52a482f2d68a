package repositories

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// JournalReader defines read operations for journals.
type JournalReader interface {
	// FindJournalByID returns the journal with its lines, or apperrors.ErrNotFound.
	FindJournalByID(ctx context.Context, tenantID, journalID string) (*domain.Journal, error)
	ListJournals(ctx context.Context, tenantID string, filter domain.JournalFilter) ([]domain.Journal, *string, error)
}

// JournalWriter defines write operations for journals.
type JournalWriter interface {
	// InsertJournal persists the header and lines atomically unless a journal already
	// exists for the key, in which case the existing journal is reported as AlreadyExisted.
	// Detection relies on the storage unique index, not on a pre-read.
	InsertJournal(ctx context.Context, journal domain.Journal) (domain.PostResult, error)
	// SetLinesCleared flips the reconciliation flag and returns the number of lines changed.
	SetLinesCleared(ctx context.Context, tenantID string, lineIDs []string, cleared bool) (int64, error)
}

// JournalRepositoryFacade combines journal reads and writes.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
