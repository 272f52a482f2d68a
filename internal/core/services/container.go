package services

import (
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with all services initialized.
// m may be nil, in which case postings are not counted.
func NewServiceContainer(repos portsrepo.RepositoryProvider, m *metrics.Metrics) *portssvc.ServiceContainer {
	locker := repos.Locker
	if m != nil {
		locker = m.InstrumentLocker(locker)
	}

	accountSvc := NewAccountService(repos.AccountRepo)
	accountMapSvc := NewAccountMapService(repos.AccountMapRepo, repos.AccountRepo)
	journalSvc := newJournalService(repos.Tx, locker, repos.JournalRepo, repos.AccountRepo, m)
	stockSvc := newStockService(repos.Tx, locker, repos.StockRepo, repos.PurchaseRepo, m)

	return &portssvc.ServiceContainer{
		Account:    accountSvc,
		AccountMap: accountMapSvc,
		Journal:    journalSvc,
		Stock:      stockSvc,
		Reporting:  NewReportingService(repos.AccountRepo, repos.ReportingRepo, accountMapSvc, m),
		Posting:    newPostingService(repos.Tx, locker, accountMapSvc, journalSvc, stockSvc, m),
	}
}
