package domain

import "github.com/shopspring/decimal"

// EntrySide indicates whether a journal line is a Debit or a Credit.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// Opposite returns the mirrored side, used when constructing reversals.
func (s EntrySide) Opposite() EntrySide {
	if s == Debit {
		return Credit
	}
	return Debit
}

// JournalLine is a single line item within a journal, affecting one account
// with a strictly positive amount on exactly one side. The amount is stated
// in the line's transaction currency; ExchangeRate converts it into the
// tenant's base currency for balance checking. Base-currency lines carry a
// rate of 1. The transaction currency is kept for audit but balance is only
// ever re-validated in the base currency.
type JournalLine struct {
	LineID       string          `json:"lineID"`
	JournalID    string          `json:"journalID"`
	AccountCode  string          `json:"accountCode"`
	Amount       decimal.Decimal `json:"amount"`
	Side         EntrySide       `json:"side"`
	CurrencyCode string          `json:"currencyCode"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"`
	Notes        string          `json:"notes,omitempty"`
	// RunningBalance is the account balance after this line, computed at
	// save time under the account row locks.
	RunningBalance decimal.Decimal `json:"runningBalance"`
	AuditFields
}

// BaseAmount returns the line amount converted into the base currency at the
// line's resolved exchange rate.
func (l JournalLine) BaseAmount() decimal.Decimal {
	return l.Amount.Mul(l.ExchangeRate)
}
