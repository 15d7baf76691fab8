package services

import (
	"context"
	"time"

	"github.com/finbooks/general_ledger_app/internal/core/domain"
	"github.com/finbooks/general_ledger_app/internal/dto"
)

// PeriodGate is the slice of the period service the journal engine consults
// synchronously before any mutation.
type PeriodGate interface {
	// CanPost resolves the period for the posting date and checks whether an
	// entry of the given kind may post into it. It returns the resolved
	// period on success and apperrors.ErrPeriodClosed (or ErrNotFound when no
	// period covers the date) otherwise.
	CanPost(ctx context.Context, tenantID string, postingDate time.Time, kind domain.EntryKind) (*domain.AccountingPeriod, error)
}

// PeriodSvcFacade combines the period gate with period lifecycle management.
type PeriodSvcFacade interface {
	PeriodGate

	CreatePeriod(ctx context.Context, tenantID string, req dto.CreatePeriodRequest, userID string) (*domain.AccountingPeriod, error)
	GetPeriod(ctx context.Context, tenantID string, periodID string) (*domain.AccountingPeriod, error)
	ListPeriods(ctx context.Context, tenantID string) ([]domain.AccountingPeriod, error)

	// Transition moves a period one step forward in its lifecycle.
	Transition(ctx context.Context, tenantID string, periodID string, newStatus domain.PeriodStatus, userID string) (*domain.AccountingPeriod, error)
}
