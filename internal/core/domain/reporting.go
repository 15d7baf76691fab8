package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow represents a single row in a trial balance report.
type TrialBalanceRow struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalance is the derived point-in-time balance listing. The zero-sum
// identity is checked at the boundary; when it fails the report says so
// instead of silently correcting anything.
type TrialBalance struct {
	TenantID     string            `json:"tenantID"`
	PeriodID     string            `json:"periodID,omitempty"`
	AsOf         time.Time         `json:"asOf"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebit   decimal.Decimal   `json:"totalDebit"`
	TotalCredit  decimal.Decimal   `json:"totalCredit"`
	OutOfBalance bool              `json:"outOfBalance"`
	// Imbalance is total debits minus total credits; zero for a healthy book.
	Imbalance decimal.Decimal `json:"imbalance"`
}

// AccountAmount pairs an account with its net amount for financial statements.
type AccountAmount struct {
	AccountCode string          `json:"accountCode"`
	Name        string          `json:"name"`
	NetAmount   decimal.Decimal `json:"netAmount"`
}

// PAndLReport represents a profit and loss statement.
type PAndLReport struct {
	Revenue   []AccountAmount `json:"revenue"`
	Expenses  []AccountAmount `json:"expenses"`
	NetProfit decimal.Decimal `json:"netProfit"`
}

// BalanceSheetReport represents a balance sheet.
type BalanceSheetReport struct {
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
}

// CashFlowReport is an indirect-method cash flow statement derived from
// account-type movement classification.
type CashFlowReport struct {
	Operating    []AccountAmount `json:"operating"`
	Investing    []AccountAmount `json:"investing"`
	Financing    []AccountAmount `json:"financing"`
	NetOperating decimal.Decimal `json:"netOperating"`
	NetInvesting decimal.Decimal `json:"netInvesting"`
	NetFinancing decimal.Decimal `json:"netFinancing"`
	NetChange    decimal.Decimal `json:"netChange"`
}

// IntegrityFinding records one account whose stored balance disagrees with
// the balance recomputed from the posted journal history.
type IntegrityFinding struct {
	AccountCode string          `json:"accountCode"`
	Expected    decimal.Decimal `json:"expected"` // replayed from history
	Actual      decimal.Decimal `json:"actual"`   // stored on the account
	Drift       decimal.Decimal `json:"drift"`
	// FirstOffendingJournalID is the earliest journal after which the replayed
	// and stored trajectories diverge, when identifiable.
	FirstOffendingJournalID string `json:"firstOffendingJournalID,omitempty"`
}

// IntegrityReport is the outcome of an independent GL recomputation.
type IntegrityReport struct {
	TenantID        string             `json:"tenantID"`
	CheckedAt       time.Time          `json:"checkedAt"`
	AccountsChecked int                `json:"accountsChecked"`
	JournalsChecked int                `json:"journalsChecked"`
	Findings        []IntegrityFinding `json:"findings"`
	Clean           bool               `json:"clean"`
}

// ReconciliationVariance is one account's deviation from a caller-supplied
// expected balance.
type ReconciliationVariance struct {
	AccountCode     string          `json:"accountCode"`
	ExpectedBalance decimal.Decimal `json:"expectedBalance"`
	ComputedBalance decimal.Decimal `json:"computedBalance"`
	Variance        decimal.Decimal `json:"variance"`
	// VariancePercent is variance over expected, as a percentage; zero when
	// the expected balance is itself zero.
	VariancePercent decimal.Decimal `json:"variancePercent"`
}

// ReconciliationReport compares computed balances against an external
// source, e.g. a bank statement or sub-ledger.
type ReconciliationReport struct {
	TenantID        string                   `json:"tenantID"`
	PeriodID        string                   `json:"periodID"`
	CheckedAt       time.Time                `json:"checkedAt"`
	Variances       []ReconciliationVariance `json:"variances"`
	UnknownAccounts []string                 `json:"unknownAccounts,omitempty"`
	Matched         int                      `json:"matched"`
}

// ExceptionKind classifies an exception report finding.
type ExceptionKind string

const (
	ExceptionUnbalancedJournal     ExceptionKind = "UNBALANCED_JOURNAL"
	ExceptionOrphanedCompanionLink ExceptionKind = "ORPHANED_COMPANION_LINK"
	ExceptionInactiveAccountLine   ExceptionKind = "INACTIVE_ACCOUNT_LINE"
	ExceptionPostingDisallowedLine ExceptionKind = "POSTING_DISALLOWED_LINE"
)

// Exception is a single integrity exception discovered by the checker.
type Exception struct {
	Kind        ExceptionKind   `json:"kind"`
	AccountCode string          `json:"accountCode,omitempty"`
	JournalID   string          `json:"journalID,omitempty"`
	Detail      string          `json:"detail"`
	Amount      decimal.Decimal `json:"amount,omitempty"`
}

// ExceptionReport aggregates defense-in-depth findings for a tenant/period.
type ExceptionReport struct {
	TenantID   string      `json:"tenantID"`
	PeriodID   string      `json:"periodID"`
	CheckedAt  time.Time   `json:"checkedAt"`
	Exceptions []Exception `json:"exceptions"`
	Clean      bool        `json:"clean"`
}
