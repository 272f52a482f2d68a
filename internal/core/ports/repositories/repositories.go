package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	Tx             TransactionManager
	Locker         DocumentLocker
	AccountRepo    AccountRepositoryFacade
	AccountMapRepo AccountMapRepository
	JournalRepo    JournalRepositoryFacade
	StockRepo      StockRepository
	PurchaseRepo   PurchaseRepository
	ReportingRepo  ReportingRepository
	// Close releases the underlying store.
	Close func()
}
