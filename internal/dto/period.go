package dto

import (
	"time"

	"github.com/finbooks/general_ledger_app/internal/core/domain"
)

// CreatePeriodRequest defines the data needed to open a new accounting period.
type CreatePeriodRequest struct {
	PeriodID  string    `json:"periodID" binding:"required"`
	Name      string    `json:"name" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
}

// TransitionPeriodRequest moves a period one step forward in its lifecycle.
type TransitionPeriodRequest struct {
	Status domain.PeriodStatus `json:"status" binding:"required,oneof=CLOSED LOCKED FINALIZED"`
}

// PeriodResponse mirrors an accounting period.
type PeriodResponse struct {
	TenantID      string              `json:"tenantID"`
	PeriodID      string              `json:"periodID"`
	Name          string              `json:"name"`
	StartDate     time.Time           `json:"startDate"`
	EndDate       time.Time           `json:"endDate"`
	Status        domain.PeriodStatus `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	LastUpdatedAt time.Time           `json:"lastUpdatedAt"`
}

// ToPeriodResponse converts a domain period to its response DTO.
func ToPeriodResponse(p *domain.AccountingPeriod) PeriodResponse {
	return PeriodResponse{
		TenantID:      p.TenantID,
		PeriodID:      p.PeriodID,
		Name:          p.Name,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
		LastUpdatedAt: p.LastUpdatedAt,
	}
}

// ToListPeriodResponse converts a slice of periods.
func ToListPeriodResponse(periods []domain.AccountingPeriod) []PeriodResponse {
	res := make([]PeriodResponse, len(periods))
	for i := range periods {
		res[i] = ToPeriodResponse(&periods[i])
	}
	return res
}
