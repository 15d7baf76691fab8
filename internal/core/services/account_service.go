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
	"github.com/shopspring/decimal"
)

// accountService implements the AccountSvcFacade interface.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service.
func NewAccountService(repo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: repo}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	// Reject a duplicate code before building anything.
	if existing, err := s.accountRepo.FindAccountByCode(ctx, tenantID, req.AccountCode); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: account code %s already exists for tenant", apperrors.ErrDuplicate, req.AccountCode)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check for duplicate account code", slog.String("account_code", req.AccountCode))
		return nil, err
	}

	parentCode := ""
	if req.ParentAccountCode != nil && *req.ParentAccountCode != "" {
		parentCode = *req.ParentAccountCode
		parent, err := s.accountRepo.FindAccountByCode(ctx, tenantID, parentCode)
		if err != nil {
			s.LogError(ctx, err, "Failed to find parent account", slog.String("parent_code", parentCode))
			return nil, fmt.Errorf("invalid parent account %s: %w", parentCode, err)
		}
		if parent.PostingAllowed {
			s.LogDebug(ctx, "Parent is a posting account, not a header account", slog.String("parent_code", parentCode))
		}
	}

	links := make([]domain.CompanionLink, 0, len(req.CompanionLinks))
	for _, l := range req.CompanionLinks {
		if _, err := s.accountRepo.FindAccountByCode(ctx, tenantID, l.AccountCode); err != nil {
			return nil, fmt.Errorf("%w: companion link target %s: %v", apperrors.ErrValidation, l.AccountCode, err)
		}
		links = append(links, domain.CompanionLink{Kind: l.Kind, AccountCode: l.AccountCode})
	}

	postingAllowed := true
	if req.PostingAllowed != nil {
		postingAllowed = *req.PostingAllowed
	}

	now := time.Now().UTC()
	account, err := domain.NewAccount(domain.Account{
		TenantID:          tenantID,
		AccountCode:       req.AccountCode,
		Name:              req.Name,
		AccountType:       req.AccountType,
		SpecialType:       req.SpecialType,
		CurrencyCode:      req.CurrencyCode,
		ParentAccountCode: parentCode,
		Description:       req.Description,
		IsActive:          true,
		PostingAllowed:    postingAllowed,
		Balance:           decimal.Zero,
		CompanionLinks:    links,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	})
	if err != nil {
		s.LogWarn(ctx, "Account failed domain validation", slog.String("account_code", req.AccountCode), slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("account_code", account.AccountCode), slog.String("tenant_id", tenantID))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully", slog.String("account_code", account.AccountCode), slog.String("tenant_id", tenantID))
	return &account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, tenantID string, accountCode string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, tenantID, accountCode)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code", slog.String("account_code", accountCode))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountsByCodes(ctx context.Context, tenantID string, accountCodes []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, tenantID, accountCodes)
	if err != nil {
		s.LogError(ctx, err, "Failed to find accounts by codes", slog.String("account_codes", fmt.Sprintf("%v", accountCodes)))
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) ListAccounts(ctx context.Context, tenantID string, limit int, offset int) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to list accounts for tenant %s: %w", tenantID, err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, tenantID string, accountCode string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.GetAccountByCode(ctx, tenantID, accountCode)
	if err != nil {
		return nil, err
	}

	next := *account
	updated := false
	if req.Name != nil {
		next.Name = *req.Name
		updated = true
	}
	if req.Description != nil {
		next.Description = *req.Description
		updated = true
	}
	if req.CompanionLinks != nil {
		links := make([]domain.CompanionLink, 0, len(*req.CompanionLinks))
		for _, l := range *req.CompanionLinks {
			if _, err := s.accountRepo.FindAccountByCode(ctx, tenantID, l.AccountCode); err != nil {
				return nil, fmt.Errorf("%w: companion link target %s: %v", apperrors.ErrValidation, l.AccountCode, err)
			}
			links = append(links, domain.CompanionLink{Kind: l.Kind, AccountCode: l.AccountCode})
		}
		next.CompanionLinks = links
		updated = true
	}
	if !updated {
		return account, nil
	}

	next.LastUpdatedAt = time.Now().UTC()
	next.LastUpdatedBy = userID

	// Re-run full construction so the replacement instance is validated
	// exactly like a new one.
	validated, err := domain.NewAccount(next)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.ReplaceAccount(ctx, validated); err != nil {
		s.LogError(ctx, err, "Failed to replace account", slog.String("account_code", accountCode))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated successfully", slog.String("account_code", accountCode), slog.String("tenant_id", tenantID))
	return &validated, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, tenantID string, accountCode string, userID string) (*domain.Account, error) {
	return s.setActive(ctx, tenantID, accountCode, userID, false)
}

func (s *accountService) ActivateAccount(ctx context.Context, tenantID string, accountCode string, userID string) (*domain.Account, error) {
	return s.setActive(ctx, tenantID, accountCode, userID, true)
}

func (s *accountService) setActive(ctx context.Context, tenantID, accountCode, userID string, active bool) (*domain.Account, error) {
	account, err := s.GetAccountByCode(ctx, tenantID, accountCode)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var next domain.Account
	if active {
		next = account.Activate(userID, now)
	} else {
		next = account.Deactivate(userID, now)
	}

	if err := s.accountRepo.ReplaceAccount(ctx, next); err != nil {
		s.LogError(ctx, err, "Failed to persist account activation change", slog.String("account_code", accountCode), slog.Bool("active", active))
		return nil, err
	}

	s.LogInfo(ctx, "Account activation state changed", slog.String("account_code", accountCode), slog.Bool("active", active))
	return &next, nil
}
