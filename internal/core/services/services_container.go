package services

import (
	portsrepo "github.com/finbooks/general_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/general_ledger_app/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies. baseCurrency is the ledger currency journal
// validation settles every line into.
func NewServiceContainer(repos portsrepo.RepositoryProvider, baseCurrency string) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Account and period services come first; the journal engine depends on
	// both.
	container.Account = NewAccountService(repos.AccountRepo)
	container.Period = NewPeriodService(repos.PeriodRepo)

	container.Journal = NewJournalService(
		repos.JournalRepo,
		container.Account,
		container.Period,
		baseCurrency,
	)

	container.Reporting = NewReportingService(repos.AccountRepo, repos.JournalRepo, repos.PeriodRepo)
	container.Integrity = NewIntegrityService(repos.AccountRepo, repos.JournalRepo, repos.PeriodRepo, baseCurrency)

	return container
}

// Compile-time interface checks.
var (
	_ portssvc.AccountSvcFacade   = (*accountService)(nil)
	_ portssvc.JournalSvcFacade   = (*journalService)(nil)
	_ portssvc.PeriodSvcFacade    = (*periodService)(nil)
	_ portssvc.ReportingSvcFacade = (*reportingService)(nil)
	_ portssvc.IntegritySvcFacade = (*integrityService)(nil)
)
