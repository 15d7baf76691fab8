package repositories

import (
	"context"
	"time"

	"github.com/finbooks/general_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal data.
type JournalReader interface {
	// FindJournalByID retrieves a journal header by its (tenant, id) identity.
	FindJournalByID(ctx context.Context, tenantID string, journalID string) (*domain.Journal, error)

	// ListJournals retrieves a paginated list of journals for a tenant using
	// token-based pagination. It returns the journals, a token for the next
	// page, and an error.
	ListJournals(ctx context.Context, tenantID string, limit int, nextToken *string, includeReversals bool) ([]domain.Journal, *string, error)
}

// JournalWriter defines write operations for journal data.
type JournalWriter interface {
	// SaveJournal atomically appends a journal with its lines and applies the
	// per-account balance deltas. Partial application must never be
	// observable: the journal insert, line inserts and balance updates
	// either all commit or all roll back.
	//
	// When journal.ReversalOf is set, the same transaction flips the original
	// journal's status to Reversed and records the bidirectional linkage. The
	// reversedBy link is set exactly once; a concurrent or repeated reversal
	// returns apperrors.ErrAlreadyReversed and nothing is applied.
	SaveJournal(ctx context.Context, journal domain.Journal, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error
}

// LineReader defines read operations for journal line data.
type LineReader interface {
	// FindLinesByJournalID retrieves all lines for a single journal.
	FindLinesByJournalID(ctx context.Context, tenantID string, journalID string) ([]domain.JournalLine, error)

	// FindLinesByJournalIDs retrieves lines for multiple journals, grouped by
	// journal ID.
	FindLinesByJournalIDs(ctx context.Context, tenantID string, journalIDs []string) (map[string][]domain.JournalLine, error)

	// ListLinesByAccount retrieves a paginated account ledger using
	// token-based pagination.
	ListLinesByAccount(ctx context.Context, tenantID string, accountCode string, limit int, nextToken *string) ([]domain.JournalLine, *string, error)
}

// HistoryReader provides the replay feed for reporting and integrity
// checking: posted journals with their lines, in posting order, from a
// consistent snapshot.
type HistoryReader interface {
	// LoadJournalHistory returns all journals for the tenant up to the given
	// time (inclusive; nil means everything), with lines populated, ordered
	// by posting date then creation time.
	LoadJournalHistory(ctx context.Context, tenantID string, upTo *time.Time) ([]domain.Journal, error)

	// LoadJournalHistoryBefore is the exclusive-bound counterpart: it returns
	// all journals posted strictly before the given time. Window reports use
	// it for the opening position so an entry posted exactly at the window
	// start is never counted twice.
	LoadJournalHistoryBefore(ctx context.Context, tenantID string, before time.Time) ([]domain.Journal, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	LineReader
	HistoryReader
}
