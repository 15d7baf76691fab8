package services

import (
	"context"

	"github.com/finbooks/general_ledger_app/internal/core/domain"
	"github.com/finbooks/general_ledger_app/internal/dto"
)

// AccountReaderSvc defines read-only account operations, used by the journal
// engine and the reporting/integrity services.
type AccountReaderSvc interface {
	GetAccountByCode(ctx context.Context, tenantID string, accountCode string) (*domain.Account, error)
	GetAccountsByCodes(ctx context.Context, tenantID string, accountCodes []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context, tenantID string, limit int, offset int) ([]domain.Account, error)
}

// AccountSvcFacade combines all account service operations exposed upward.
type AccountSvcFacade interface {
	AccountReaderSvc

	CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, tenantID string, accountCode string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)
	DeactivateAccount(ctx context.Context, tenantID string, accountCode string, userID string) (*domain.Account, error)
	ActivateAccount(ctx context.Context, tenantID string, accountCode string, userID string) (*domain.Account, error)
}
