package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/general_ledger_app/internal/apperrors"
	"github.com/finbooks/general_ledger_app/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const periodColumns = `tenant_id, period_id, name, start_date, end_date, status, created_at, created_by, last_updated_at, last_updated_by`

type PgxPeriodRepository struct {
	BaseRepository
}

// newPgxPeriodRepository creates a new repository for accounting period data.
func newPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepositoryFacade {
	return &PgxPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

func scanPeriod(row pgx.Row) (domain.AccountingPeriod, error) {
	var p domain.AccountingPeriod
	err := row.Scan(
		&p.TenantID,
		&p.PeriodID,
		&p.Name,
		&p.StartDate,
		&p.EndDate,
		&p.Status,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return domain.AccountingPeriod{}, err
	}
	return p, nil
}

// FindPeriodByID retrieves a period by its (tenant, id) identity.
func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, tenantID string, periodID string) (*domain.AccountingPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM accounting_periods WHERE tenant_id = $1 AND period_id = $2;`
	period, err := scanPeriod(r.Pool.QueryRow(ctx, query, tenantID, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: period %s", apperrors.ErrNotFound, periodID)
		}
		return nil, fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	return &period, nil
}

// FindPeriodForDate retrieves the period whose range contains the date,
// start inclusive and end exclusive.
func (r *PgxPeriodRepository) FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM accounting_periods
		WHERE tenant_id = $1 AND start_date <= $2 AND $2 < end_date;
	`
	period, err := scanPeriod(r.Pool.QueryRow(ctx, query, tenantID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no period covers %s", apperrors.ErrNotFound, date.Format(time.DateOnly))
		}
		return nil, fmt.Errorf("failed to find period for date %s: %w", date.Format(time.DateOnly), err)
	}
	return &period, nil
}

// ListPeriods retrieves all periods for a tenant ordered by start date.
func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, tenantID string) ([]domain.AccountingPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM accounting_periods WHERE tenant_id = $1 ORDER BY start_date;`
	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	periods := make([]domain.AccountingPeriod, 0, 12)
	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period row: %w", err)
		}
		periods = append(periods, period)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period rows: %w", err)
	}
	return periods, nil
}

// SavePeriod persists a new period.
func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	query := `
		INSERT INTO accounting_periods (` + periodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		period.TenantID,
		period.PeriodID,
		period.Name,
		period.StartDate,
		period.EndDate,
		period.Status,
		period.CreatedAt,
		period.CreatedBy,
		period.LastUpdatedAt,
		period.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: period %s", apperrors.ErrDuplicate, period.PeriodID)
		}
		return fmt.Errorf("failed to insert period %s: %w", period.PeriodID, err)
	}
	return nil
}

// ReplacePeriod overwrites a period after a state transition. The write only
// applies while the row still holds the status the caller transitioned from,
// so a transition computed against a stale read loses the race instead of
// moving the state machine backwards.
func (r *PgxPeriodRepository) ReplacePeriod(ctx context.Context, period domain.AccountingPeriod, expectedStatus domain.PeriodStatus) error {
	query := `
		UPDATE accounting_periods
		SET name = $3, status = $4, last_updated_at = $5, last_updated_by = $6
		WHERE tenant_id = $1 AND period_id = $2 AND status = $7;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		period.TenantID,
		period.PeriodID,
		period.Name,
		period.Status,
		period.LastUpdatedAt,
		period.LastUpdatedBy,
		expectedStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to replace period %s: %w", period.PeriodID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: period %s", apperrors.ErrConflict, period.PeriodID)
	}
	return nil
}
