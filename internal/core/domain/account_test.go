package domain_test

import (
	"testing"
	"time"

	"github.com/finbooks/general_ledger_app/internal/apperrors"
	"github.com/finbooks/general_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseAccount() domain.Account {
	return domain.Account{
		TenantID:       "tenant-1",
		AccountCode:    "1000",
		Name:           "Cash",
		AccountType:    domain.Asset,
		CurrencyCode:   "USD",
		IsActive:       true,
		PostingAllowed: true,
		Balance:        decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     time.Now().UTC(),
			CreatedBy:     "user-1",
			LastUpdatedAt: time.Now().UTC(),
			LastUpdatedBy: "user-1",
		},
	}
}

func TestNewAccountValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Account)
		ok     bool
	}{
		{"valid", func(a *domain.Account) {}, true},
		{"missing tenant", func(a *domain.Account) { a.TenantID = "" }, false},
		{"code too short", func(a *domain.Account) { a.AccountCode = "10" }, false},
		{"code non-numeric", func(a *domain.Account) { a.AccountCode = "10A0" }, false},
		{"missing name", func(a *domain.Account) { a.Name = "" }, false},
		{"unknown type", func(a *domain.Account) { a.AccountType = "WEIRD" }, false},
		{"own parent", func(a *domain.Account) { a.ParentAccountCode = a.AccountCode }, false},
		{"bad currency", func(a *domain.Account) { a.CurrencyCode = "USDX" }, false},
		{"over-precise balance", func(a *domain.Account) { a.Balance = decimal.RequireFromString("10.005") }, false},
		{"companion link to self", func(a *domain.Account) {
			a.CompanionLinks = []domain.CompanionLink{{Kind: domain.LinkContra, AccountCode: a.AccountCode}}
		}, false},
		{"valid companion link", func(a *domain.Account) {
			a.CompanionLinks = []domain.CompanionLink{{Kind: domain.LinkAccumulatedDepreciation, AccountCode: "1500"}}
		}, true},
		{"contra asset on liability", func(a *domain.Account) {
			a.AccountType = domain.Liability
			a.SpecialType = domain.ContraAsset
		}, false},
		{"provision on liability", func(a *domain.Account) {
			a.AccountType = domain.Liability
			a.SpecialType = domain.Provision
		}, true},
		{"control with posting allowed", func(a *domain.Account) {
			a.SpecialType = domain.Control
			a.PostingAllowed = true
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := baseAccount()
			tt.mutate(&acc)
			_, err := domain.NewAccount(acc)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			}
		})
	}
}

func TestApplyDeltaDoesNotMutateReceiver(t *testing.T) {
	acc := baseAccount()
	now := time.Now().UTC()

	next, err := acc.ApplyDelta(decimal.RequireFromString("100.00"), "user-2", now)
	require.NoError(t, err)

	assert.True(t, acc.Balance.IsZero(), "receiver must be untouched")
	assert.True(t, next.Balance.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, "user-2", next.LastUpdatedBy)
}

func TestApplyDeltaPolarity(t *testing.T) {
	now := time.Now().UTC()

	// Debit-normal account cannot go negative.
	asset := baseAccount()
	_, err := asset.ApplyDelta(decimal.RequireFromString("-0.01"), "u", now)
	assert.ErrorIs(t, err, apperrors.ErrPolarityViolation)

	// Credit-normal account cannot go positive.
	revenue := baseAccount()
	revenue.AccountCode = "4000"
	revenue.AccountType = domain.Revenue
	_, err = revenue.ApplyDelta(decimal.RequireFromString("0.01"), "u", now)
	assert.ErrorIs(t, err, apperrors.ErrPolarityViolation)
	next, err := revenue.ApplyDelta(decimal.RequireFromString("-50.00"), "u", now)
	require.NoError(t, err)
	assert.True(t, next.Balance.IsNegative())
}

func TestApplyDeltaRejectsSubMinorUnitBalance(t *testing.T) {
	now := time.Now().UTC()

	// An FX delta with more decimals than the currency carries must not
	// persist a sub-cent balance.
	asset := baseAccount()
	_, err := asset.ApplyDelta(decimal.RequireFromString("123.456"), "u", now)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	next, err := asset.ApplyDelta(decimal.RequireFromString("123.45"), "u", now)
	require.NoError(t, err)
	assert.True(t, next.Balance.Equal(decimal.RequireFromString("123.45")))
}

func TestAccumulatedDepreciationIsCreditBalanced(t *testing.T) {
	now := time.Now().UTC()

	accDep := baseAccount()
	accDep.AccountCode = "1510"
	accDep.SpecialType = domain.AccumulatedDepreciation

	// Asset-typed, but must carry a credit balance.
	assert.True(t, accDep.IsCreditNormal())
	assert.False(t, accDep.IsDebitNormal())

	_, err := accDep.ApplyDelta(decimal.RequireFromString("10.00"), "u", now)
	assert.ErrorIs(t, err, apperrors.ErrPolarityViolation)

	next, err := accDep.ApplyDelta(decimal.RequireFromString("-10.00"), "u", now)
	require.NoError(t, err)
	assert.True(t, next.Balance.IsNegative())
}

func TestPolarityExemptAccountsSwingBothWays(t *testing.T) {
	now := time.Now().UTC()

	clearing := baseAccount()
	clearing.AccountCode = "1900"
	clearing.SpecialType = domain.Clearing

	down, err := clearing.ApplyDelta(decimal.RequireFromString("-25.00"), "u", now)
	require.NoError(t, err)
	up, err := down.ApplyDelta(decimal.RequireFromString("50.00"), "u", now)
	require.NoError(t, err)
	assert.True(t, up.Balance.IsPositive())
}

func TestDeactivateActivate(t *testing.T) {
	acc := baseAccount()
	at := time.Now().UTC().Add(time.Hour)

	inactive := acc.Deactivate("user-2", at)
	assert.False(t, inactive.IsActive)
	assert.True(t, acc.IsActive, "receiver untouched")
	assert.Equal(t, at, inactive.LastUpdatedAt)

	// Deactivating again still refreshes the audit trail.
	later := at.Add(time.Hour)
	again := inactive.Deactivate("user-3", later)
	assert.False(t, again.IsActive)
	assert.Equal(t, later, again.LastUpdatedAt)

	active := again.Activate("user-3", later.Add(time.Hour))
	assert.True(t, active.IsActive)
}
