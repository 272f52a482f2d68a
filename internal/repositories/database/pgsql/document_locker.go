package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/SscSPs/bizledger/internal/platform/lock"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RowLocker serializes postings on a document with a row lock on posting_documents.
// The lock is taken inside the posting transaction and released at commit or rollback.
type RowLocker struct {
	BaseRepository
	wait time.Duration
}

// NewRowLocker creates a locker that waits at most wait for a contended document.
func NewRowLocker(pool *pgxpool.Pool, wait time.Duration) *RowLocker {
	return &RowLocker{BaseRepository: BaseRepository{Pool: pool}, wait: wait}
}

var _ portsrepo.DocumentLocker = (*RowLocker)(nil)

// WithDocumentLock runs fn inside a transaction holding the document's row lock.
func (l *RowLocker) WithDocumentLock(ctx context.Context, doc domain.DocumentRef, fn func(ctx context.Context) error) error {
	key := doc.String()
	if lock.Held(ctx, key) {
		return fn(ctx)
	}

	return l.RunInTx(ctx, func(ctx context.Context) error {
		q := l.q(ctx)
		ms := l.wait.Milliseconds()
		if ms < 1 {
			ms = 1
		}
		if _, err := q.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", ms)); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}

		if _, err := q.Exec(ctx, `
			INSERT INTO posting_documents (tenant_id, ref_table, ref_id)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING;
		`, doc.TenantID, doc.RefTable, doc.RefID); err != nil {
			return l.lockError(ctx, key, err)
		}

		var one int
		err := q.QueryRow(ctx, `
			SELECT 1 FROM posting_documents
			WHERE tenant_id = $1 AND ref_table = $2 AND ref_id = $3
			FOR UPDATE;
		`, doc.TenantID, doc.RefTable, doc.RefID).Scan(&one)
		if err != nil {
			return l.lockError(ctx, key, err)
		}

		return fn(lock.MarkHeld(ctx, key))
	})
}

func (l *RowLocker) lockError(ctx context.Context, key string, err error) error {
	if ctx.Err() != nil {
		return apperrors.NewTimeoutError(key, ctx.Err())
	}
	mapped := mapPgError(err)
	var ce *apperrors.ConcurrencyError
	if errors.As(mapped, &ce) {
		ce.Resource = key
		return ce
	}
	return fmt.Errorf("failed to lock document %s: %w", key, err)
}
