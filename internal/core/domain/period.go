package domain

import (
	"fmt"
	"time"

	"github.com/finbooks/general_ledger_app/internal/apperrors"
)

// PeriodStatus is the lifecycle state of an accounting period. Transitions
// are strictly monotonic: Open → Closed → Locked → Finalized, one step at a
// time, never backwards.
type PeriodStatus string

const (
	PeriodOpen      PeriodStatus = "OPEN"
	PeriodClosed    PeriodStatus = "CLOSED"
	PeriodLocked    PeriodStatus = "LOCKED"
	PeriodFinalized PeriodStatus = "FINALIZED"
)

// rank orders period states for the monotonic transition check.
func (s PeriodStatus) rank() int {
	switch s {
	case PeriodOpen:
		return 0
	case PeriodClosed:
		return 1
	case PeriodLocked:
		return 2
	case PeriodFinalized:
		return 3
	}
	return -1
}

// AccountingPeriod tracks one tenant's reporting period and its gate state.
type AccountingPeriod struct {
	TenantID  string       `json:"tenantID"`
	PeriodID  string       `json:"periodID"`
	Name      string       `json:"name"`
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"`
	Status    PeriodStatus `json:"status"`
	AuditFields
}

// NewAccountingPeriod constructs a validated period in the Open state.
func NewAccountingPeriod(tenantID, periodID, name string, start, end time.Time) (AccountingPeriod, error) {
	if tenantID == "" || periodID == "" {
		return AccountingPeriod{}, fmt.Errorf("%w: tenant ID and period ID are required", apperrors.ErrValidation)
	}
	if !end.After(start) {
		return AccountingPeriod{}, fmt.Errorf("%w: period end date must follow start date", apperrors.ErrValidation)
	}
	return AccountingPeriod{
		TenantID:  tenantID,
		PeriodID:  periodID,
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Status:    PeriodOpen,
	}, nil
}

// AcceptsEntry reports whether an entry of the given kind may post into the
// period. Open periods accept everything; Closed periods accept only
// adjusting and closing entries; Locked and Finalized periods accept nothing.
func (p AccountingPeriod) AcceptsEntry(kind EntryKind) bool {
	switch p.Status {
	case PeriodOpen:
		return true
	case PeriodClosed:
		return kind == AdjustingEntry || kind == ClosingEntry
	default:
		return false
	}
}

// Contains reports whether a posting date falls within the period bounds
// (start inclusive, end exclusive).
func (p AccountingPeriod) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && date.Before(p.EndDate)
}

// TransitionTo returns a copy of the period in the new state, or an error if
// the move is backwards or skips a state.
func (p AccountingPeriod) TransitionTo(status PeriodStatus, updatedBy string, at time.Time) (AccountingPeriod, error) {
	from, to := p.Status.rank(), status.rank()
	if to < 0 {
		return AccountingPeriod{}, fmt.Errorf("%w: unknown period status %q", apperrors.ErrValidation, status)
	}
	if to != from+1 {
		return AccountingPeriod{}, fmt.Errorf("%w: cannot move period %s from %s to %s", apperrors.ErrPeriodTransition, p.PeriodID, p.Status, status)
	}
	next := p
	next.Status = status
	next.LastUpdatedAt = at
	next.LastUpdatedBy = updatedBy
	return next, nil
}
