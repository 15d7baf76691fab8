package accounting_test

import (
	"testing"

	"github.com/finbooks/general_ledger_app/internal/apperrors"
	"github.com/finbooks/general_ledger_app/internal/core/domain"
	"github.com/finbooks/general_ledger_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(account string, amount string, side domain.EntrySide, rate string) domain.JournalLine {
	return domain.JournalLine{
		LineID:       "line-" + account,
		AccountCode:  account,
		Amount:       decimal.RequireFromString(amount),
		Side:         side,
		CurrencyCode: "USD",
		ExchangeRate: decimal.RequireFromString(rate),
	}
}

func TestSignedAmount(t *testing.T) {
	d, err := accounting.SignedAmount(line("1000", "100.00", domain.Debit, "1"))
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("100.00")))

	c, err := accounting.SignedAmount(line("4000", "100.00", domain.Credit, "1"))
	require.NoError(t, err)
	assert.True(t, c.Equal(decimal.RequireFromString("-100.00")))

	_, err = accounting.SignedAmount(line("1000", "0", domain.Debit, "1"))
	assert.ErrorIs(t, err, apperrors.ErrValidation, "zero-amount line is invalid")

	_, err = accounting.SignedAmount(domain.JournalLine{AccountCode: "1000", Amount: decimal.NewFromInt(1), Side: "BOTH"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateJournalBalance(t *testing.T) {
	balanced := []domain.JournalLine{
		line("1000", "1000.00", domain.Debit, "1"),
		line("4000", "1000.00", domain.Credit, "1"),
	}
	assert.NoError(t, accounting.ValidateJournalBalance(balanced, "USD"))

	unbalanced := []domain.JournalLine{
		line("1000", "500.00", domain.Debit, "1"),
		line("4000", "400.00", domain.Credit, "1"),
	}
	assert.ErrorIs(t, accounting.ValidateJournalBalance(unbalanced, "USD"), apperrors.ErrUnbalanced)

	single := []domain.JournalLine{line("1000", "500.00", domain.Debit, "1")}
	assert.ErrorIs(t, accounting.ValidateJournalBalance(single, "USD"), apperrors.ErrValidation)
}

func TestValidateJournalBalanceDistinctAccounts(t *testing.T) {
	// Two lines, one account: balances to zero yet moves nothing, rejected.
	selfCancelling := []domain.JournalLine{
		line("1000", "100.00", domain.Debit, "1"),
		line("1000", "100.00", domain.Credit, "1"),
	}
	assert.ErrorIs(t, accounting.ValidateJournalBalance(selfCancelling, "USD"), apperrors.ErrValidation)

	// Splitting one side across several lines of the same account is fine as
	// long as a second account is touched.
	split := []domain.JournalLine{
		line("1000", "60.00", domain.Debit, "1"),
		line("1000", "40.00", domain.Debit, "1"),
		line("4000", "100.00", domain.Credit, "1"),
	}
	assert.NoError(t, accounting.ValidateJournalBalance(split, "USD"))
}

func TestValidateJournalBalanceBaseCurrencyRate(t *testing.T) {
	// A base-currency line must carry a rate of exactly 1.
	skewed := []domain.JournalLine{
		line("1000", "1000.00", domain.Debit, "1"),
		line("4000", "800.00", domain.Credit, "1.25"),
	}
	assert.ErrorIs(t, accounting.ValidateJournalBalance(skewed, "USD"), apperrors.ErrValidation)

	// The same USD lines convert freely when the ledger runs on EUR.
	eurBook := []domain.JournalLine{
		line("1000", "1000.00", domain.Debit, "0.9"),
		line("4000", "720.00", domain.Credit, "1.25"),
	}
	assert.NoError(t, accounting.ValidateJournalBalance(eurBook, "EUR"))
}

func TestValidateJournalBalanceAfterFX(t *testing.T) {
	// 100 GBP at 1.25 balances 125 USD.
	gbpLine := line("1000", "100.00", domain.Debit, "1.25")
	gbpLine.CurrencyCode = "GBP"
	fx := []domain.JournalLine{
		gbpLine,
		line("4000", "125.00", domain.Credit, "1"),
	}
	assert.NoError(t, accounting.ValidateJournalBalance(fx, "USD"))

	// Same lines with a stale rate no longer balance.
	gbpLine.ExchangeRate = decimal.RequireFromString("1.30")
	fx[0] = gbpLine
	assert.ErrorIs(t, accounting.ValidateJournalBalance(fx, "USD"), apperrors.ErrUnbalanced)
}

func TestNetDeltas(t *testing.T) {
	lines := []domain.JournalLine{
		line("1000", "1000.00", domain.Debit, "1"),
		line("1000", "200.00", domain.Credit, "1"),
		line("4000", "800.00", domain.Credit, "1"),
	}
	deltas, err := accounting.NetDeltas(lines)
	require.NoError(t, err)
	assert.True(t, deltas["1000"].Equal(decimal.RequireFromString("800.00")))
	assert.True(t, deltas["4000"].Equal(decimal.RequireFromString("-800.00")))
}
