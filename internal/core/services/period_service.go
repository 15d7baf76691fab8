package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finbooks/general_ledger_app/internal/apperrors"
	"github.com/finbooks/general_ledger_app/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/general_ledger_app/internal/core/ports/services"
	"github.com/finbooks/general_ledger_app/internal/dto"
)

// periodService implements the PeriodSvcFacade interface. It is the period
// gate the journal engine consults before any mutation.
type periodService struct {
	BaseService
	periodRepo portsrepo.PeriodRepositoryFacade
}

// NewPeriodService creates a new period service.
func NewPeriodService(repo portsrepo.PeriodRepositoryFacade) portssvc.PeriodSvcFacade {
	return &periodService{periodRepo: repo}
}

// Ensure periodService implements the PeriodSvcFacade interface
var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

func (s *periodService) CreatePeriod(ctx context.Context, tenantID string, req dto.CreatePeriodRequest, userID string) (*domain.AccountingPeriod, error) {
	if existing, err := s.periodRepo.FindPeriodByID(ctx, tenantID, req.PeriodID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: period %s already exists for tenant", apperrors.ErrDuplicate, req.PeriodID)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	period, err := domain.NewAccountingPeriod(tenantID, req.PeriodID, req.Name, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	// Overlapping periods would make posting-date resolution ambiguous.
	existing, err := s.periodRepo.ListPeriods(ctx, tenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list periods for overlap check", slog.String("tenant_id", tenantID))
		return nil, err
	}
	for _, p := range existing {
		if period.StartDate.Before(p.EndDate) && p.StartDate.Before(period.EndDate) {
			return nil, fmt.Errorf("%w: period %s overlaps existing period %s", apperrors.ErrValidation, req.PeriodID, p.PeriodID)
		}
	}

	now := time.Now().UTC()
	period.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	if err := s.periodRepo.SavePeriod(ctx, period); err != nil {
		s.LogError(ctx, err, "Failed to save period", slog.String("period_id", req.PeriodID))
		return nil, err
	}

	s.LogInfo(ctx, "Accounting period created", slog.String("period_id", period.PeriodID), slog.String("tenant_id", tenantID))
	return &period, nil
}

func (s *periodService) GetPeriod(ctx context.Context, tenantID string, periodID string) (*domain.AccountingPeriod, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, tenantID, periodID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find period", slog.String("period_id", periodID))
		}
		return nil, err
	}
	return period, nil
}

func (s *periodService) ListPeriods(ctx context.Context, tenantID string) ([]domain.AccountingPeriod, error) {
	periods, err := s.periodRepo.ListPeriods(ctx, tenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list periods", slog.String("tenant_id", tenantID))
		return nil, err
	}
	if periods == nil {
		return []domain.AccountingPeriod{}, nil
	}
	return periods, nil
}

// CanPost resolves the accounting period covering the posting date and
// applies the gate policy for the entry kind.
func (s *periodService) CanPost(ctx context.Context, tenantID string, postingDate time.Time, kind domain.EntryKind) (*domain.AccountingPeriod, error) {
	period, err := s.periodRepo.FindPeriodForDate(ctx, tenantID, postingDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no accounting period covers posting date %s", apperrors.ErrNotFound, postingDate.Format(time.DateOnly))
		}
		s.LogError(ctx, err, "Failed to resolve period for posting date", slog.Time("posting_date", postingDate))
		return nil, err
	}

	if !period.AcceptsEntry(kind) {
		return nil, fmt.Errorf("%w: period %s is %s and does not accept %s entries", apperrors.ErrPeriodClosed, period.PeriodID, period.Status, kind)
	}
	return period, nil
}

func (s *periodService) Transition(ctx context.Context, tenantID string, periodID string, newStatus domain.PeriodStatus, userID string) (*domain.AccountingPeriod, error) {
	period, err := s.GetPeriod(ctx, tenantID, periodID)
	if err != nil {
		return nil, err
	}

	next, err := period.TransitionTo(newStatus, userID, time.Now().UTC())
	if err != nil {
		s.LogWarn(ctx, "Rejected period transition", slog.String("period_id", periodID), slog.String("from", string(period.Status)), slog.String("to", string(newStatus)))
		return nil, err
	}

	if err := s.periodRepo.ReplacePeriod(ctx, next, period.Status); err != nil {
		s.LogError(ctx, err, "Failed to persist period transition", slog.String("period_id", periodID))
		return nil, err
	}

	s.LogInfo(ctx, "Accounting period transitioned", slog.String("period_id", periodID), slog.String("from", string(period.Status)), slog.String("to", string(newStatus)))
	return &next, nil
}
