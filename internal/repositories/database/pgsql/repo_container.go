package pgsql

import (
	"time"

	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every Postgres repository over one pool.
// A nil locker selects the row locker with the given wait.
func NewRepositoryProvider(dbPool *pgxpool.Pool, locker portsrepo.DocumentLocker, lockWait time.Duration) portsrepo.RepositoryProvider {
	base := &BaseRepository{Pool: dbPool}
	if locker == nil {
		locker = NewRowLocker(dbPool, lockWait)
	}

	return portsrepo.RepositoryProvider{
		Tx:             base,
		Locker:         locker,
		AccountRepo:    newPgxAccountRepository(dbPool),
		AccountMapRepo: newPgxAccountMapRepository(dbPool),
		JournalRepo:    newPgxJournalRepository(dbPool),
		StockRepo:      newPgxStockRepository(dbPool),
		PurchaseRepo:   newPgxPurchaseRepository(dbPool),
		ReportingRepo:  newReportingRepository(dbPool),
		Close:          dbPool.Close,
	}
}
