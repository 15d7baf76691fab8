package services

import (
	"context"
	"time"

	"github.com/finbooks/general_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportingSvcFacade produces derived read models from the posted history.
// Reports never mutate ledger state.
type ReportingSvcFacade interface {
	// TrialBalance computes per-account balances as of a point in time. When
	// asOf is nil the stored balances are read directly; otherwise the posted
	// history is replayed up to asOf. The two paths share one signed-amount
	// computation and therefore agree by construction.
	TrialBalance(ctx context.Context, tenantID string, periodID string, asOf *time.Time) (*domain.TrialBalance, error)

	ProfitAndLoss(ctx context.Context, tenantID string, from, to time.Time) (*domain.PAndLReport, error)
	BalanceSheet(ctx context.Context, tenantID string, asOf time.Time) (*domain.BalanceSheetReport, error)
	CashFlowStatement(ctx context.Context, tenantID string, from, to time.Time) (*domain.CashFlowReport, error)
}

// IntegritySvcFacade recomputes ledger state independently and reports
// variances. Findings are surfaced, never auto-corrected.
type IntegritySvcFacade interface {
	ValidateGLIntegrity(ctx context.Context, tenantID string) (*domain.IntegrityReport, error)
	ReconcileTrialBalance(ctx context.Context, tenantID string, periodID string, expected map[string]decimal.Decimal) (*domain.ReconciliationReport, error)
	GenerateExceptionReport(ctx context.Context, tenantID string, periodID string) (*domain.ExceptionReport, error)
}
