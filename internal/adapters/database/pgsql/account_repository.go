package pgsql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finbooks/general_ledger_app/internal/apperrors"
	"github.com/finbooks/general_ledger_app/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `tenant_id, account_code, name, account_type, special_type, currency_code, parent_account_code, description, is_active, posting_allowed, balance, companion_links, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for chart-of-accounts data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// scanAccount turns one row into a domain account. Companion links are
// stored as a JSONB document.
func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	var specialType sql.NullString
	var parentCode sql.NullString
	var description sql.NullString
	var links []byte
	err := row.Scan(
		&a.TenantID,
		&a.AccountCode,
		&a.Name,
		&a.AccountType,
		&specialType,
		&a.CurrencyCode,
		&parentCode,
		&description,
		&a.IsActive,
		&a.PostingAllowed,
		&a.Balance,
		&links,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	a.SpecialType = domain.SpecialAccountType(specialType.String)
	a.ParentAccountCode = parentCode.String
	a.Description = description.String
	if len(links) > 0 {
		if err := json.Unmarshal(links, &a.CompanionLinks); err != nil {
			return domain.Account{}, fmt.Errorf("failed to decode companion links for account %s: %w", a.AccountCode, err)
		}
	}
	return a, nil
}

func encodeCompanionLinks(links []domain.CompanionLink) ([]byte, error) {
	if len(links) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(links)
}

// FindAccountByCode retrieves an account by its (tenant, code) identity.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, tenantID string, accountCode string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_code = $2;`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, tenantID, accountCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountCode)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountCode, err)
	}
	return &account, nil
}

// FindAccountsByCodes retrieves multiple accounts keyed by account code.
// Missing codes are simply absent from the result map.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, tenantID string, accountCodes []string) (map[string]domain.Account, error) {
	if len(accountCodes) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_code = ANY($2);`
	rows, err := r.Pool.Query(ctx, query, tenantID, accountCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by codes: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(accountCodes))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts[account.AccountCode] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// ListAccounts retrieves a page of the tenant's chart ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, tenantID string, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 ORDER BY account_code LIMIT $2 OFFSET $3;`
	rows, err := r.Pool.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0, limit)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// SaveAccount persists a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	links, err := encodeCompanionLinks(account.CompanionLinks)
	if err != nil {
		return fmt.Errorf("failed to encode companion links for account %s: %w", account.AccountCode, err)
	}

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = r.Pool.Exec(ctx, query,
		account.TenantID,
		account.AccountCode,
		account.Name,
		account.AccountType,
		nullIfEmpty(string(account.SpecialType)),
		account.CurrencyCode,
		nullIfEmpty(account.ParentAccountCode),
		nullIfEmpty(account.Description),
		account.IsActive,
		account.PostingAllowed,
		account.Balance,
		links,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountCode)
		}
		return fmt.Errorf("failed to insert account %s: %w", account.AccountCode, err)
	}
	return nil
}

// ReplaceAccount overwrites an existing account with a new validated
// instance. The balance is deliberately excluded: balances move only through
// the posting path.
func (r *PgxAccountRepository) ReplaceAccount(ctx context.Context, account domain.Account) error {
	links, err := encodeCompanionLinks(account.CompanionLinks)
	if err != nil {
		return fmt.Errorf("failed to encode companion links for account %s: %w", account.AccountCode, err)
	}

	query := `
		UPDATE accounts
		SET name = $3, description = $4, is_active = $5, companion_links = $6, last_updated_at = $7, last_updated_by = $8
		WHERE tenant_id = $1 AND account_code = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		account.TenantID,
		account.AccountCode,
		account.Name,
		nullIfEmpty(account.Description),
		account.IsActive,
		links,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to replace account %s: %w", account.AccountCode, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountCode)
	}
	return nil
}

// FindAccountsByCodesForUpdate retrieves multiple accounts and locks the
// rows within the given transaction. Rows are locked in ascending code order
// so concurrent postings always take locks in the same sequence.
func (r *PgxAccountRepository) FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, accountCodes []string) (map[string]domain.Account, error) {
	if len(accountCodes) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1 AND account_code = ANY($2)
		ORDER BY account_code
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, tenantID, accountCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for update: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(accountCodes))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accounts[account.AccountCode] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	if len(accounts) != len(accountCodes) {
		missing := make([]string, 0)
		for _, code := range accountCodes {
			if _, found := accounts[code]; !found {
				missing = append(missing, code)
			}
		}
		slog.WarnContext(ctx, "Some accounts requested for update lock were not found", "missing_accounts", missing)
		return nil, fmt.Errorf("%w: accounts %v", apperrors.ErrNotFound, missing)
	}
	return accounts, nil
}

// UpdateAccountBalancesInTx applies signed balance deltas to multiple
// accounts within the given transaction. Callers must have locked the rows
// first.
func (r *PgxAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, tenantID string, balanceChanges map[string]decimal.Decimal, updatedBy string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		UPDATE accounts
		SET balance = balance + $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND account_code = $2;
	`
	for code, delta := range balanceChanges {
		batch.Queue(query, tenantID, code, delta, now, updatedBy)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to apply balance changes: %w", err)
	}
	return nil
}

// nullIfEmpty maps an empty string to SQL NULL.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
