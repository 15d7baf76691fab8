package services

import (
	"context"

	"github.com/finbooks/general_ledger_app/internal/core/domain"
	"github.com/finbooks/general_ledger_app/internal/dto"
)

// JournalSvcFacade defines the journal entry engine's caller-facing surface.
type JournalSvcFacade interface {
	// PostJournal validates and posts a balanced multi-line entry. Validation
	// happens strictly before any mutation; on success the balance deltas and
	// the appended journal are visible atomically.
	PostJournal(ctx context.Context, tenantID string, req dto.CreateJournalRequest, postedBy string) (*domain.Journal, error)

	// ReverseJournal posts a mirror entry through the same posting path and
	// links both journals. A journal may be reversed exactly once.
	ReverseJournal(ctx context.Context, tenantID string, journalID string, req dto.ReverseJournalRequest, userID string) (*domain.Journal, error)

	GetJournalByID(ctx context.Context, tenantID string, journalID string) (*domain.Journal, error)
	ListJournals(ctx context.Context, tenantID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)
	ListLinesByAccount(ctx context.Context, tenantID string, accountCode string, params dto.ListLinesParams) (*dto.ListLinesResponse, error)
}
