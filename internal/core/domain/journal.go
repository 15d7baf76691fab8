package domain

import "time"

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// EntryKind classifies a journal entry for period-gate policy purposes.
type EntryKind string

const (
	StandardEntry  EntryKind = "STANDARD"
	AdjustingEntry EntryKind = "ADJUSTING"
	ClosingEntry   EntryKind = "CLOSING"
)

// Journal represents a single, balanced financial event composed of multiple
// lines. Once posted it is immutable; the only permitted state change is the
// one-shot reversal linkage.
type Journal struct {
	JournalID   string        `json:"journalID"`
	TenantID    string        `json:"tenantID"`
	PostingDate time.Time     `json:"postingDate"`
	PeriodID    string        `json:"periodID"`
	Reference   string        `json:"reference,omitempty"`
	Description string        `json:"description"`
	Kind        EntryKind     `json:"kind"`
	Status      JournalStatus `json:"status"`
	PostedBy    string        `json:"postedBy"`
	// ReversalOf points back at the journal this entry reverses.
	ReversalOf *string `json:"reversalOf,omitempty"`
	// ReversedBy points forward at the journal that reversed this entry.
	// It is set exactly once.
	ReversedBy *string       `json:"reversedBy,omitempty"`
	Lines      []JournalLine `json:"lines,omitempty"`
	AuditFields
}

// IsReversal reports whether this journal is itself a reversing entry.
func (j Journal) IsReversal() bool { return j.ReversalOf != nil }
