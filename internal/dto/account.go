package dto

import (
	"time"

	"github.com/finbooks/general_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CompanionLinkRequest declares a cross-reference to a related account.
type CompanionLinkRequest struct {
	Kind        domain.CompanionLinkKind `json:"kind" binding:"required,oneof=ACCUMULATED_DEPRECIATION CONTRA INTERCOMPANY_MIRROR"`
	AccountCode string                   `json:"accountCode" binding:"required"`
}

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	AccountCode       string                    `json:"accountCode" binding:"required"`
	Name              string                    `json:"name" binding:"required"`
	AccountType       domain.AccountType        `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	SpecialType       domain.SpecialAccountType `json:"specialType" binding:"omitempty,oneof=CONTRA_ASSET ACCUMULATED_DEPRECIATION PROVISION CONTROL CLEARING SUSPENSE TAX FX_GAIN_LOSS INTERCOMPANY ELIMINATION GOODWILL"`
	CurrencyCode      string                    `json:"currencyCode" binding:"required,len=3"`
	ParentAccountCode *string                   `json:"parentAccountCode"`
	Description       string                    `json:"description"`
	PostingAllowed    *bool                     `json:"postingAllowed"` // defaults to true
	CompanionLinks    []CompanionLinkRequest    `json:"companionLinks" binding:"omitempty,dive"`
}

// UpdateAccountRequest defines the fields allowed to change on an account.
// Pointers distinguish zero-value updates from fields not provided.
type UpdateAccountRequest struct {
	Name           *string                 `json:"name"`
	Description    *string                 `json:"description"`
	CompanionLinks *[]CompanionLinkRequest `json:"companionLinks" binding:"omitempty,dive"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	TenantID          string                    `json:"tenantID"`
	AccountCode       string                    `json:"accountCode"`
	Name              string                    `json:"name"`
	AccountType       domain.AccountType        `json:"accountType"`
	SpecialType       domain.SpecialAccountType `json:"specialType,omitempty"`
	CurrencyCode      string                    `json:"currencyCode"`
	ParentAccountCode string                    `json:"parentAccountCode,omitempty"`
	Description       string                    `json:"description,omitempty"`
	IsActive          bool                      `json:"isActive"`
	PostingAllowed    bool                      `json:"postingAllowed"`
	Balance           decimal.Decimal           `json:"balance"`
	CompanionLinks    []domain.CompanionLink    `json:"companionLinks,omitempty"`
	CreatedAt         time.Time                 `json:"createdAt"`
	LastUpdatedAt     time.Time                 `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to its response DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		TenantID:          acc.TenantID,
		AccountCode:       acc.AccountCode,
		Name:              acc.Name,
		AccountType:       acc.AccountType,
		SpecialType:       acc.SpecialType,
		CurrencyCode:      acc.CurrencyCode,
		ParentAccountCode: acc.ParentAccountCode,
		Description:       acc.Description,
		IsActive:          acc.IsActive,
		PostingAllowed:    acc.PostingAllowed,
		Balance:           acc.Balance,
		CompanionLinks:    acc.CompanionLinks,
		CreatedAt:         acc.CreatedAt,
		LastUpdatedAt:     acc.LastUpdatedAt,
	}
}

// ToListAccountResponse converts a slice of accounts to response DTOs.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}
