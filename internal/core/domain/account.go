package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/finbooks/general_ledger_app/internal/apperrors"
	"github.com/finbooks/general_ledger_app/internal/core/money"
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// SpecialAccountType refines an account's role beyond its fundamental type.
// Some special types carry their own polarity or posting rules.
type SpecialAccountType string

const (
	SpecialNone             SpecialAccountType = ""
	ContraAsset             SpecialAccountType = "CONTRA_ASSET"
	AccumulatedDepreciation SpecialAccountType = "ACCUMULATED_DEPRECIATION"
	Provision               SpecialAccountType = "PROVISION"
	Control                 SpecialAccountType = "CONTROL"
	Clearing                SpecialAccountType = "CLEARING"
	Suspense                SpecialAccountType = "SUSPENSE"
	Tax                     SpecialAccountType = "TAX"
	FXGainLoss              SpecialAccountType = "FX_GAIN_LOSS"
	Intercompany            SpecialAccountType = "INTERCOMPANY"
	Elimination             SpecialAccountType = "ELIMINATION"
	Goodwill                SpecialAccountType = "GOODWILL"
)

// CompanionLinkKind identifies the relationship a companion link declares.
type CompanionLinkKind string

const (
	LinkAccumulatedDepreciation CompanionLinkKind = "ACCUMULATED_DEPRECIATION"
	LinkContra                  CompanionLinkKind = "CONTRA"
	LinkIntercompanyMirror      CompanionLinkKind = "INTERCOMPANY_MIRROR"
)

// CompanionLink is a declared cross-reference to a related account, e.g. an
// asset account pointing at its accumulated depreciation account. Links are
// consistency-checked by the integrity checker, never followed on the write
// path.
type CompanionLink struct {
	Kind        CompanionLinkKind `json:"kind"`
	AccountCode string            `json:"accountCode"`
}

// accountCodeRE is the strict chart-of-accounts code format.
var accountCodeRE = regexp.MustCompile(`^[0-9]{3,8}$`)

// Account represents a chart-of-accounts node. Accounts are immutable: every
// state change goes through a method that returns a new validated instance,
// so polarity invariants hold at every transition. The balance is stored in
// the signed convention where debits are positive and credits are negative
// for every account regardless of type.
type Account struct {
	TenantID          string             `json:"tenantID"`
	AccountCode       string             `json:"accountCode"`
	Name              string             `json:"name"`
	AccountType       AccountType        `json:"accountType"`
	SpecialType       SpecialAccountType `json:"specialType,omitempty"`
	CurrencyCode      string             `json:"currencyCode"`
	ParentAccountCode string             `json:"parentAccountCode,omitempty"`
	Description       string             `json:"description,omitempty"`
	IsActive          bool               `json:"isActive"`
	PostingAllowed    bool               `json:"postingAllowed"`
	Balance           decimal.Decimal    `json:"balance"`
	CompanionLinks    []CompanionLink    `json:"companionLinks,omitempty"`
	AuditFields
}

// NewAccount constructs a validated account. Any rule violation is returned
// wrapped in apperrors.ErrValidation naming the violated rule.
func NewAccount(a Account) (Account, error) {
	if err := a.validate(); err != nil {
		return Account{}, err
	}
	return a, nil
}

func (a Account) validate() error {
	if a.TenantID == "" {
		return fmt.Errorf("%w: tenant ID is required", apperrors.ErrValidation)
	}
	if !accountCodeRE.MatchString(a.AccountCode) {
		return fmt.Errorf("%w: account code %q must be 3 to 8 digits", apperrors.ErrValidation, a.AccountCode)
	}
	if a.Name == "" {
		return fmt.Errorf("%w: account name is required", apperrors.ErrValidation)
	}
	switch a.AccountType {
	case Asset, Liability, Equity, Revenue, Expense:
	default:
		return fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, a.AccountType)
	}
	if a.ParentAccountCode == a.AccountCode && a.AccountCode != "" {
		return fmt.Errorf("%w: account cannot be its own parent", apperrors.ErrValidation)
	}
	if len(a.CurrencyCode) != 3 {
		return fmt.Errorf("%w: currency code must be a 3-letter ISO code", apperrors.ErrValidation)
	}
	if err := a.validateSpecialType(); err != nil {
		return err
	}
	if !a.Balance.Equal(a.Balance.RoundBank(money.MinorUnits(a.CurrencyCode))) {
		return fmt.Errorf("%w: balance %s exceeds the %s minor unit precision", apperrors.ErrValidation, a.Balance.String(), a.CurrencyCode)
	}
	if !a.LastUpdatedAt.IsZero() && a.LastUpdatedAt.Before(a.CreatedAt) {
		return fmt.Errorf("%w: lastUpdatedAt precedes createdAt", apperrors.ErrValidation)
	}
	for _, link := range a.CompanionLinks {
		if link.AccountCode == a.AccountCode {
			return fmt.Errorf("%w: companion link cannot reference the account itself", apperrors.ErrValidation)
		}
		if !accountCodeRE.MatchString(link.AccountCode) {
			return fmt.Errorf("%w: companion link account code %q is malformed", apperrors.ErrValidation, link.AccountCode)
		}
	}
	return a.validatePolarity()
}

func (a Account) validateSpecialType() error {
	switch a.SpecialType {
	case SpecialNone, Clearing, Suspense, Tax, FXGainLoss, Intercompany, Elimination:
		return nil
	case ContraAsset, AccumulatedDepreciation, Goodwill:
		if a.AccountType != Asset {
			return fmt.Errorf("%w: special type %s requires an ASSET account, got %s", apperrors.ErrValidation, a.SpecialType, a.AccountType)
		}
		return nil
	case Provision:
		if a.AccountType != Liability {
			return fmt.Errorf("%w: special type PROVISION requires a LIABILITY account, got %s", apperrors.ErrValidation, a.AccountType)
		}
		return nil
	case Control:
		if a.PostingAllowed {
			return fmt.Errorf("%w: control accounts must not allow direct postings", apperrors.ErrValidation)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown special account type %q", apperrors.ErrValidation, a.SpecialType)
	}
}

// validatePolarity enforces the sign invariant for the account's type.
// Debit-normal balances never go negative, credit-normal balances never go
// positive. Contra-style special types flip the expectation; a few special
// types are exempt because they legitimately swing both ways.
func (a Account) validatePolarity() error {
	if a.IsPolarityExempt() {
		return nil
	}
	if a.isContra() {
		if a.Balance.IsPositive() {
			return fmt.Errorf("%w: %s account %s must carry a credit balance, got %s", apperrors.ErrPolarityViolation, a.SpecialType, a.AccountCode, a.Balance.String())
		}
		return nil
	}
	if a.IsDebitNormal() && a.Balance.IsNegative() {
		return fmt.Errorf("%w: debit-normal account %s cannot carry a credit balance of %s", apperrors.ErrPolarityViolation, a.AccountCode, a.Balance.String())
	}
	if a.IsCreditNormal() && a.Balance.IsPositive() {
		return fmt.Errorf("%w: credit-normal account %s cannot carry a debit balance of %s", apperrors.ErrPolarityViolation, a.AccountCode, a.Balance.String())
	}
	return nil
}

func (a Account) isContra() bool {
	return a.SpecialType == ContraAsset || a.SpecialType == AccumulatedDepreciation || a.SpecialType == Provision
}

// IsDebitNormal reports whether the account type normally carries a debit
// (positive) balance.
func (a Account) IsDebitNormal() bool {
	return (a.AccountType == Asset || a.AccountType == Expense) && !a.isContra()
}

// IsCreditNormal reports whether the account type normally carries a credit
// (negative) balance.
func (a Account) IsCreditNormal() bool {
	return a.AccountType == Liability || a.AccountType == Equity || a.AccountType == Revenue || a.isContra()
}

// IsPolarityExempt reports whether the account may carry a balance of either
// sign (clearing, suspense, FX gain/loss, intercompany and elimination
// accounts net out over time rather than holding one polarity).
func (a Account) IsPolarityExempt() bool {
	switch a.SpecialType {
	case Clearing, Suspense, FXGainLoss, Intercompany, Elimination:
		return true
	}
	return false
}

// ApplyDelta returns a new Account with the balance adjusted by the signed
// delta (debit-positive convention). The receiver is not mutated; the new
// instance is re-validated so a polarity violation or a balance that falls
// off the currency's minor-unit grid surfaces before anything is persisted.
// This is the single choke point for balance changes.
func (a Account) ApplyDelta(delta decimal.Decimal, updatedBy string, at time.Time) (Account, error) {
	next := a
	next.Balance = a.Balance.Add(delta)
	next.LastUpdatedAt = at
	next.LastUpdatedBy = updatedBy
	if !next.Balance.Equal(next.Balance.RoundBank(money.MinorUnits(next.CurrencyCode))) {
		return Account{}, fmt.Errorf("%w: balance %s exceeds the %s minor unit precision", apperrors.ErrValidation, next.Balance.String(), next.CurrencyCode)
	}
	if err := next.validatePolarity(); err != nil {
		return Account{}, err
	}
	return next, nil
}

// Deactivate returns a copy with IsActive false. Deactivating an already
// inactive account only refreshes the audit fields.
func (a Account) Deactivate(updatedBy string, at time.Time) Account {
	next := a
	next.IsActive = false
	next.LastUpdatedAt = at
	next.LastUpdatedBy = updatedBy
	return next
}

// Activate returns a copy with IsActive true.
func (a Account) Activate(updatedBy string, at time.Time) Account {
	next := a
	next.IsActive = true
	next.LastUpdatedAt = at
	next.LastUpdatedBy = updatedBy
	return next
}
