package dto

import (
	"github.com/shopspring/decimal"
)

// ReconcileRequest carries caller-supplied expected balances (e.g. from a
// bank statement or a sub-ledger export), keyed by account code.
type ReconcileRequest struct {
	Expected map[string]decimal.Decimal `json:"expected" binding:"required,min=1"`
}
