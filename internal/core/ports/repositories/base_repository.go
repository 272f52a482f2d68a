package repositories

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// TransactionManager runs a unit of work atomically.
// Repositories called with the ctx passed to fn join the transaction.
// Nested calls reuse the outer transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// DocumentLocker grants exclusive ownership of a business document while fn runs.
// Implementations wait a bounded time and fail with a concurrency error instead of blocking forever.
// Locks are re-entrant per ctx: a nested call for a document already held runs fn directly.
type DocumentLocker interface {
	WithDocumentLock(ctx context.Context, doc domain.DocumentRef, fn func(ctx context.Context) error) error
}
