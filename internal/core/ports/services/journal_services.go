package services

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
)

// JournalReaderSvc defines read operations for journals.
type JournalReaderSvc interface {
	GetJournal(ctx context.Context, tenantID, journalID string) (*domain.Journal, error)
	ListJournals(ctx context.Context, tenantID string, params dto.ListJournalsParams) ([]domain.Journal, *string, error)
}

// JournalWriterSvc defines journal posting.
type JournalWriterSvc interface {
	// PostJournal validates and posts a balanced journal exactly once per idempotency key.
	PostJournal(ctx context.Context, tenantID string, req dto.PostJournalRequest) (domain.PostResult, error)
	// ReverseJournal posts a mirror of an existing journal. Reversing twice returns the first reversal.
	ReverseJournal(ctx context.Context, tenantID, journalID string, req dto.ReverseJournalRequest) (domain.PostResult, error)
	MarkLinesCleared(ctx context.Context, tenantID string, req dto.ClearLinesRequest) (int64, error)
}

// JournalSvcFacade combines journal reads and writes.
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
