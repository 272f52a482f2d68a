package sqlite

import (
	"database/sql"

	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every sqlite repository over db. sqlite has no row
// locks, so the caller supplies an in-process or distributed DocumentLocker.
func NewRepositoryProvider(db *sql.DB, locker portsrepo.DocumentLocker) portsrepo.RepositoryProvider {
	base := BaseRepository{DB: db}
	return portsrepo.RepositoryProvider{
		Tx:             &base,
		Locker:         locker,
		AccountRepo:    &accountRepository{BaseRepository: base},
		AccountMapRepo: &accountMapRepository{BaseRepository: base},
		JournalRepo:    &journalRepository{BaseRepository: base},
		StockRepo:      &stockRepository{BaseRepository: base},
		PurchaseRepo:   &purchaseRepository{BaseRepository: base},
		ReportingRepo:  &reportingRepository{BaseRepository: base},
		Close:          func() { db.Close() },
	}
}
