package dto

import (
	"time"

	"github.com/finbooks/general_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateJournalLineRequest is one line of a posting command. Exactly one
// side, a strictly positive amount, and an already-resolved exchange rate
// into the tenant's base currency (omitted means 1, i.e. a base-currency
// line).
type CreateJournalLineRequest struct {
	AccountCode  string           `json:"accountCode" binding:"required"`
	Amount       decimal.Decimal  `json:"amount" binding:"required"`
	Side         domain.EntrySide `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	CurrencyCode string           `json:"currencyCode" binding:"required,len=3"`
	ExchangeRate *decimal.Decimal `json:"exchangeRate"`
	Notes        string           `json:"notes"`
}

// CreateJournalRequest is the posting command for a balanced journal entry.
// JournalID is the caller's idempotency key; when omitted the engine assigns
// one. A duplicate ID for the tenant is rejected.
type CreateJournalRequest struct {
	JournalID   string                     `json:"journalID"`
	PostingDate time.Time                  `json:"postingDate" binding:"required"`
	Reference   string                     `json:"reference"`
	Description string                     `json:"description" binding:"required"`
	Kind        domain.EntryKind           `json:"kind" binding:"omitempty,oneof=STANDARD ADJUSTING CLOSING"`
	Lines       []CreateJournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// ReverseJournalRequest carries the reversal command inputs.
type ReverseJournalRequest struct {
	Reason string `json:"reason" binding:"required"`
	// PostingDate for the reversing entry; defaults to the current time, so
	// reversing into a since-closed period fails the period gate unless the
	// caller dates it into an open one.
	PostingDate *time.Time `json:"postingDate"`
}

// JournalLineResponse mirrors a posted journal line.
type JournalLineResponse struct {
	LineID         string           `json:"lineID"`
	JournalID      string           `json:"journalID"`
	AccountCode    string           `json:"accountCode"`
	Amount         decimal.Decimal  `json:"amount"`
	Side           domain.EntrySide `json:"side"`
	CurrencyCode   string           `json:"currencyCode"`
	ExchangeRate   decimal.Decimal  `json:"exchangeRate"`
	Notes          string           `json:"notes,omitempty"`
	RunningBalance decimal.Decimal  `json:"runningBalance"`
}

// JournalResponse mirrors a posted journal entry.
type JournalResponse struct {
	JournalID   string                `json:"journalID"`
	TenantID    string                `json:"tenantID"`
	PostingDate time.Time             `json:"postingDate"`
	PeriodID    string                `json:"periodID"`
	Reference   string                `json:"reference,omitempty"`
	Description string                `json:"description"`
	Kind        domain.EntryKind      `json:"kind"`
	Status      domain.JournalStatus  `json:"status"`
	PostedBy    string                `json:"postedBy"`
	ReversalOf  *string               `json:"reversalOf,omitempty"`
	ReversedBy  *string               `json:"reversedBy,omitempty"`
	Lines       []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// ListJournalsParams holds the paging inputs for journal listing.
type ListJournalsParams struct {
	Limit            int     `form:"limit"`
	NextToken        *string `form:"nextToken"`
	IncludeReversals bool    `form:"includeReversals"`
	IncludeLines     bool    `form:"includeLines"`
}

// ListJournalsResponse is a page of journals plus the continuation token.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ListLinesParams holds the paging inputs for an account ledger listing.
type ListLinesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListLinesResponse is a page of one account's ledger lines.
type ListLinesResponse struct {
	Lines     []JournalLineResponse `json:"lines"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// ToJournalLineResponse converts a domain line to its response DTO.
func ToJournalLineResponse(l *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:         l.LineID,
		JournalID:      l.JournalID,
		AccountCode:    l.AccountCode,
		Amount:         l.Amount,
		Side:           l.Side,
		CurrencyCode:   l.CurrencyCode,
		ExchangeRate:   l.ExchangeRate,
		Notes:          l.Notes,
		RunningBalance: l.RunningBalance,
	}
}

// ToJournalLineResponses converts a slice of domain lines.
func ToJournalLineResponses(lines []domain.JournalLine) []JournalLineResponse {
	res := make([]JournalLineResponse, len(lines))
	for i := range lines {
		res[i] = ToJournalLineResponse(&lines[i])
	}
	return res
}

// ToJournalResponse converts a domain journal to its response DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	return JournalResponse{
		JournalID:   j.JournalID,
		TenantID:    j.TenantID,
		PostingDate: j.PostingDate,
		PeriodID:    j.PeriodID,
		Reference:   j.Reference,
		Description: j.Description,
		Kind:        j.Kind,
		Status:      j.Status,
		PostedBy:    j.PostedBy,
		ReversalOf:  j.ReversalOf,
		ReversedBy:  j.ReversedBy,
		Lines:       ToJournalLineResponses(j.Lines),
		CreatedAt:   j.CreatedAt,
	}
}
