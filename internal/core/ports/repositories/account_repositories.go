package repositories

import (
	"context"
	"time"

	"github.com/finbooks/general_ledger_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for chart-of-accounts data.
type AccountReader interface {
	// FindAccountByCode retrieves an account by its (tenant, code) identity.
	FindAccountByCode(ctx context.Context, tenantID string, accountCode string) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by account code.
	FindAccountsByCodes(ctx context.Context, tenantID string, accountCodes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves all accounts for a tenant, active and inactive.
	ListAccounts(ctx context.Context, tenantID string, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data. Accounts are
// replaced wholesale (construct-validate-replace), never partially mutated.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// ReplaceAccount overwrites an existing account with a new validated instance.
	ReplaceAccount(ctx context.Context, account domain.Account) error
}

// AccountPostingSupport defines the operations the journal engine needs to
// apply balance deltas atomically.
type AccountPostingSupport interface {
	// FindAccountsByCodesForUpdate selects accounts and row-locks them within
	// a transaction. Implementations must lock in ascending account-code
	// order to keep the lock order fixed across concurrent postings.
	FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, accountCodes []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies signed balance deltas to multiple
	// accounts within a given transaction.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, tenantID string, balanceChanges map[string]decimal.Decimal, updatedBy string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountPostingSupport
}
