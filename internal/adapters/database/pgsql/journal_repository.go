package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/finbooks/general_ledger_app/internal/apperrors"
	"github.com/finbooks/general_ledger_app/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger_app/internal/core/ports/repositories"
	"github.com/finbooks/general_ledger_app/internal/utils/accounting"
	"github.com/finbooks/general_ledger_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const journalColumns = `journal_id, tenant_id, posting_date, period_id, reference, description, kind, status, posted_by, reversal_of, reversed_by, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, journal_id, account_code, amount, side, currency_code, exchange_rate, notes, running_balance, created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxJournalRepository creates a new repository for journal and line data.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

// SaveJournal appends a journal with its lines and applies the balance
// deltas in a single database transaction. For a reversing entry it also
// links the original journal, guarded so a journal can be reversed exactly
// once.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := journal.CreatedAt
	userID := journal.CreatedBy

	// 1. Insert the journal header.
	journalQuery := `
		INSERT INTO journals (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, journalQuery,
		journal.JournalID,
		journal.TenantID,
		journal.PostingDate,
		journal.PeriodID,
		nullIfEmpty(journal.Reference),
		journal.Description,
		journal.Kind,
		journal.Status,
		journal.PostedBy,
		journal.ReversalOf,
		journal.ReversedBy,
		journal.CreatedAt,
		journal.CreatedBy,
		journal.LastUpdatedAt,
		journal.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: journal %s", apperrors.ErrDuplicate, journal.JournalID)
		}
		return fmt.Errorf("failed to insert journal %s: %w", journal.JournalID, err)
	}

	// 2. For a reversal, claim the original inside the same transaction. The
	// guard on reversed_by makes the second of two concurrent reversals fail
	// and roll everything back.
	if journal.ReversalOf != nil {
		claimQuery := `
			UPDATE journals
			SET status = $4, reversed_by = $3, last_updated_at = $5, last_updated_by = $6
			WHERE tenant_id = $1 AND journal_id = $2 AND reversed_by IS NULL AND status = $7;
		`
		cmdTag, err := tx.Exec(ctx, claimQuery,
			journal.TenantID,
			*journal.ReversalOf,
			journal.JournalID,
			domain.Reversed,
			now,
			userID,
			domain.Posted,
		)
		if err != nil {
			return fmt.Errorf("failed to link reversal for journal %s: %w", *journal.ReversalOf, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: journal %s", apperrors.ErrAlreadyReversed, *journal.ReversalOf)
		}
	}

	// 3. Lock the touched accounts in a fixed order and read their balances.
	accountCodes := make([]string, 0, len(balanceChanges))
	for code := range balanceChanges {
		accountCodes = append(accountCodes, code)
	}
	sort.Strings(accountCodes)

	lockedAccounts, err := r.accountRepo.FindAccountsByCodesForUpdate(ctx, tx, journal.TenantID, accountCodes)
	if err != nil {
		return fmt.Errorf("failed to lock accounts for journal %s: %w", journal.JournalID, err)
	}

	// Re-apply each delta against the locked balance. The service ran the
	// same check on unlocked snapshots; a concurrent commit may have moved a
	// balance since, so this run against the authoritative rows is the one
	// that counts. Any violation rolls the whole transaction back.
	for _, code := range accountCodes {
		account, ok := lockedAccounts[code]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, code)
		}
		if _, err := account.ApplyDelta(balanceChanges[code], userID, now); err != nil {
			return fmt.Errorf("journal %s rejected against locked balances: %w", journal.JournalID, err)
		}
	}

	// 4. Apply the balance deltas.
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, journal.TenantID, balanceChanges, userID, now); err != nil {
		return fmt.Errorf("failed to update balances for journal %s: %w", journal.JournalID, err)
	}

	// 5. Insert the lines with running balances computed under the locks.
	runningBalances := make(map[string]decimal.Decimal, len(lockedAccounts))
	for code, account := range lockedAccounts {
		runningBalances[code] = account.Balance
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (line_id, tenant_id, journal_id, account_code, amount, side, currency_code, exchange_rate, notes, running_balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	for _, line := range lines {
		signed, err := accounting.SignedAmount(line)
		if err != nil {
			return fmt.Errorf("failed to compute signed amount for line %s: %w", line.LineID, err)
		}
		running := runningBalances[line.AccountCode].Add(signed)
		runningBalances[line.AccountCode] = running

		batch.Queue(lineQuery,
			line.LineID,
			journal.TenantID,
			line.JournalID,
			line.AccountCode,
			line.Amount,
			line.Side,
			line.CurrencyCode,
			line.ExchangeRate,
			nullIfEmpty(line.Notes),
			running,
			now,
			userID,
			now,
			userID,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert lines for journal %s: %w", journal.JournalID, err)
	}

	return r.Commit(ctx, tx)
}

// scanJournal turns one row into a domain journal.
func scanJournal(row pgx.Row) (domain.Journal, error) {
	var j domain.Journal
	var reference sql.NullString
	var reversalOf sql.NullString
	var reversedBy sql.NullString
	err := row.Scan(
		&j.JournalID,
		&j.TenantID,
		&j.PostingDate,
		&j.PeriodID,
		&reference,
		&j.Description,
		&j.Kind,
		&j.Status,
		&j.PostedBy,
		&reversalOf,
		&reversedBy,
		&j.CreatedAt,
		&j.CreatedBy,
		&j.LastUpdatedAt,
		&j.LastUpdatedBy,
	)
	if err != nil {
		return domain.Journal{}, err
	}
	j.Reference = reference.String
	if reversalOf.Valid {
		j.ReversalOf = &reversalOf.String
	}
	if reversedBy.Valid {
		j.ReversedBy = &reversedBy.String
	}
	return j, nil
}

func scanLine(row pgx.Row) (domain.JournalLine, error) {
	var l domain.JournalLine
	var notes sql.NullString
	err := row.Scan(
		&l.LineID,
		&l.JournalID,
		&l.AccountCode,
		&l.Amount,
		&l.Side,
		&l.CurrencyCode,
		&l.ExchangeRate,
		&notes,
		&l.RunningBalance,
		&l.CreatedAt,
		&l.CreatedBy,
		&l.LastUpdatedAt,
		&l.LastUpdatedBy,
	)
	if err != nil {
		return domain.JournalLine{}, err
	}
	l.Notes = notes.String
	return l, nil
}

// FindJournalByID retrieves a journal header by its (tenant, id) identity.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, tenantID string, journalID string) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE tenant_id = $1 AND journal_id = $2;`
	journal, err := scanJournal(r.Pool.QueryRow(ctx, query, tenantID, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, journalID)
		}
		return nil, fmt.Errorf("failed to find journal %s: %w", journalID, err)
	}
	return &journal, nil
}

// ListJournals retrieves a paginated list of journals using token-based
// pagination over (posting_date, created_at) descending.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, tenantID string, limit int, nextToken *string, includeReversals bool) ([]domain.Journal, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to know whether another page exists.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + journalColumns + ` FROM journals`
	filterClause := `WHERE tenant_id = $1`
	if !includeReversals {
		filterClause += ` AND status != 'REVERSED' AND reversal_of IS NULL`
	}
	orderByClause := `ORDER BY posting_date DESC, created_at DESC`

	args := []any{tenantID}
	query := baseQuery + " " + filterClause
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		query += ` AND (posting_date, created_at) < ($2, $3)`
		args = append(args, lastDate, lastCreatedAt)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journals for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	journals := make([]domain.Journal, 0, fetchLimit)
	for rows.Next() {
		journal, err := scanJournal(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		journals = append(journals, journal)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating journal rows: %w", err)
	}

	var nextTokenVal *string
	if len(journals) > limit {
		last := journals[limit-1]
		token := pagination.EncodeToken(last.PostingDate, last.CreatedAt)
		nextTokenVal = &token
		journals = journals[:limit]
	}
	return journals, nextTokenVal, nil
}

// FindLinesByJournalID retrieves all lines for a single journal.
func (r *PgxJournalRepository) FindLinesByJournalID(ctx context.Context, tenantID string, journalID string) ([]domain.JournalLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM journal_lines
		WHERE tenant_id = $1 AND journal_id = $2
		ORDER BY created_at, line_id;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for journal %s: %w", journalID, err)
	}
	defer rows.Close()

	lines := make([]domain.JournalLine, 0, 4)
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows: %w", err)
	}
	return lines, nil
}

// FindLinesByJournalIDs retrieves lines for multiple journals, grouped by
// journal ID.
func (r *PgxJournalRepository) FindLinesByJournalIDs(ctx context.Context, tenantID string, journalIDs []string) (map[string][]domain.JournalLine, error) {
	if len(journalIDs) == 0 {
		return map[string][]domain.JournalLine{}, nil
	}

	query := `
		SELECT ` + lineColumns + `
		FROM journal_lines
		WHERE tenant_id = $1 AND journal_id = ANY($2)
		ORDER BY journal_id, created_at, line_id;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, journalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for journals: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]domain.JournalLine, len(journalIDs))
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		grouped[line.JournalID] = append(grouped[line.JournalID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows: %w", err)
	}
	return grouped, nil
}

// ListLinesByAccount retrieves a paginated account ledger ordered by posting
// date descending, newest first.
func (r *PgxJournalRepository) ListLinesByAccount(ctx context.Context, tenantID string, accountCode string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + prefixedLineColumns("l") + `, j.posting_date
		FROM journal_lines l
		JOIN journals j ON l.tenant_id = j.tenant_id AND l.journal_id = j.journal_id
		WHERE l.tenant_id = $1 AND l.account_code = $2
	`
	orderByClause := `ORDER BY j.posting_date DESC, l.created_at DESC`

	args := []any{tenantID, accountCode}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		query += ` AND (j.posting_date, l.created_at) < ($3, $4)`
		args = append(args, lastDate, lastCreatedAt)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query ledger for account %s: %w", accountCode, err)
	}
	defer rows.Close()

	type ledgerRow struct {
		line        domain.JournalLine
		postingDate time.Time
	}
	ledger := make([]ledgerRow, 0, fetchLimit)
	for rows.Next() {
		var l domain.JournalLine
		var notes sql.NullString
		var postingDate time.Time
		err := rows.Scan(
			&l.LineID,
			&l.JournalID,
			&l.AccountCode,
			&l.Amount,
			&l.Side,
			&l.CurrencyCode,
			&l.ExchangeRate,
			&notes,
			&l.RunningBalance,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
			&postingDate,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		l.Notes = notes.String
		ledger = append(ledger, ledgerRow{line: l, postingDate: postingDate})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating ledger rows: %w", err)
	}

	var nextTokenVal *string
	if len(ledger) > limit {
		last := ledger[limit-1]
		token := pagination.EncodeToken(last.postingDate, last.line.CreatedAt)
		nextTokenVal = &token
		ledger = ledger[:limit]
	}

	lines := make([]domain.JournalLine, len(ledger))
	for i := range ledger {
		lines[i] = ledger[i].line
	}
	return lines, nextTokenVal, nil
}

// LoadJournalHistory returns all journals for the tenant up to the given
// time (nil means everything), with lines populated, in posting order. This
// is the replay feed for reporting and integrity checking.
func (r *PgxJournalRepository) LoadJournalHistory(ctx context.Context, tenantID string, upTo *time.Time) ([]domain.Journal, error) {
	if upTo == nil {
		return r.loadHistory(ctx, tenantID, "", nil)
	}
	return r.loadHistory(ctx, tenantID, ` AND posting_date <= $2`, []any{*upTo})
}

// LoadJournalHistoryBefore returns all journals posted strictly before the
// given time, with lines populated, in posting order. The bound is exclusive
// in SQL rather than computed client-side so timestamp rounding in the store
// cannot pull an entry posted exactly at the bound into the result.
func (r *PgxJournalRepository) LoadJournalHistoryBefore(ctx context.Context, tenantID string, before time.Time) ([]domain.Journal, error) {
	return r.loadHistory(ctx, tenantID, ` AND posting_date < $2`, []any{before})
}

func (r *PgxJournalRepository) loadHistory(ctx context.Context, tenantID string, boundClause string, boundArgs []any) ([]domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE tenant_id = $1` + boundClause
	args := append([]any{tenantID}, boundArgs...)
	query += ` ORDER BY posting_date, created_at;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal history for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	journals := make([]domain.Journal, 0, 64)
	for rows.Next() {
		journal, err := scanJournal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		journals = append(journals, journal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal rows: %w", err)
	}
	if len(journals) == 0 {
		return journals, nil
	}

	ids := make([]string, len(journals))
	for i := range journals {
		ids[i] = journals[i].JournalID
	}
	linesByID, err := r.FindLinesByJournalIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	for i := range journals {
		journals[i].Lines = linesByID[journals[i].JournalID]
	}
	return journals, nil
}

// prefixedLineColumns qualifies the line column list with a table alias.
func prefixedLineColumns(alias string) string {
	return alias + ".line_id, " + alias + ".journal_id, " + alias + ".account_code, " + alias + ".amount, " + alias + ".side, " + alias + ".currency_code, " + alias + ".exchange_rate, " + alias + ".notes, " + alias + ".running_balance, " + alias + ".created_at, " + alias + ".created_by, " + alias + ".last_updated_at, " + alias + ".last_updated_by"
}
