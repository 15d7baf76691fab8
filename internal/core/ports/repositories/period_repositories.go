package repositories

import (
	"context"
	"time"

	"github.com/finbooks/general_ledger_app/internal/core/domain"
)

// PeriodReader defines read operations for accounting period data.
type PeriodReader interface {
	// FindPeriodByID retrieves a period by its (tenant, id) identity.
	FindPeriodByID(ctx context.Context, tenantID string, periodID string) (*domain.AccountingPeriod, error)

	// FindPeriodForDate retrieves the period whose date range contains the
	// given posting date.
	FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error)

	// ListPeriods retrieves all periods for a tenant ordered by start date.
	ListPeriods(ctx context.Context, tenantID string) ([]domain.AccountingPeriod, error)
}

// PeriodWriter defines write operations for period data.
type PeriodWriter interface {
	// SavePeriod persists a new period.
	SavePeriod(ctx context.Context, period domain.AccountingPeriod) error

	// ReplacePeriod overwrites a period after a state transition. The write
	// only applies while the stored status still equals expectedStatus;
	// otherwise it fails with a conflict.
	ReplacePeriod(ctx context.Context, period domain.AccountingPeriod, expectedStatus domain.PeriodStatus) error
}

// PeriodRepositoryFacade combines all period-related repository interfaces.
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
}
