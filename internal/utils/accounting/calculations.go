package accounting

import (
	"fmt"

	"github.com/finbooks/general_ledger_app/internal/apperrors"
	"github.com/finbooks/general_ledger_app/internal/core/domain"
	"github.com/finbooks/general_ledger_app/internal/core/money"
	"github.com/shopspring/decimal"
)

// SignedAmount converts a journal line into its signed base-currency delta:
// debits are positive, credits are negative, for every account type. Both
// the posting path and the replay/integrity path go through this single
// function so incrementally maintained balances and replayed balances agree
// by construction.
func SignedAmount(line domain.JournalLine) (decimal.Decimal, error) {
	if line.Amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: line amount must be strictly positive, got %s for account %s", apperrors.ErrValidation, line.Amount.String(), line.AccountCode)
	}
	base := line.BaseAmount()
	switch line.Side {
	case domain.Debit:
		return base, nil
	case domain.Credit:
		return base.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown entry side %q on account %s", apperrors.ErrValidation, line.Side, line.AccountCode)
	}
}

// lineBaseMoney resolves one line into the base currency as a Money value.
// Lines already denominated in the base currency must carry a rate of
// exactly 1, so FX conversion only ever happens on foreign-currency lines.
func lineBaseMoney(line domain.JournalLine, baseCurrency string) (money.Money, error) {
	settled, err := money.New(line.Amount, line.CurrencyCode)
	if err != nil {
		return money.Money{}, fmt.Errorf("%w: account %s: %s", apperrors.ErrValidation, line.AccountCode, err.Error())
	}
	if line.CurrencyCode == baseCurrency && !line.ExchangeRate.Equal(decimal.NewFromInt(1)) {
		return money.Money{}, fmt.Errorf("%w: base-currency line for account %s must carry an exchange rate of 1, got %s", apperrors.ErrValidation, line.AccountCode, line.ExchangeRate.String())
	}
	converted, err := settled.MulRate(line.ExchangeRate, baseCurrency)
	if err != nil {
		return money.Money{}, fmt.Errorf("%w: account %s: %s", apperrors.ErrValidation, line.AccountCode, err.Error())
	}
	return converted, nil
}

// ValidateJournalBalance checks the double-entry invariant: after resolving
// every line into the base currency, the debit and credit sums must be
// exactly equal. It also rejects fewer than two lines, journals that touch
// fewer than two distinct accounts, non-positive amounts, and base-currency
// lines carrying an exchange rate other than 1.
func ValidateJournalBalance(lines []domain.JournalLine, baseCurrency string) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: journal must have at least two lines", apperrors.ErrValidation)
	}

	accountCodes := make(map[string]struct{}, len(lines))
	debits := money.Zero(baseCurrency)
	credits := money.Zero(baseCurrency)
	for _, line := range lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: line amount must be strictly positive, got %s for account %s", apperrors.ErrValidation, line.Amount.String(), line.AccountCode)
		}
		base, err := lineBaseMoney(line, baseCurrency)
		if err != nil {
			return err
		}
		accountCodes[line.AccountCode] = struct{}{}
		switch line.Side {
		case domain.Debit:
			if debits, err = debits.Add(base); err != nil {
				return fmt.Errorf("%w: %s", apperrors.ErrInternal, err.Error())
			}
		case domain.Credit:
			if credits, err = credits.Add(base); err != nil {
				return fmt.Errorf("%w: %s", apperrors.ErrInternal, err.Error())
			}
		default:
			return fmt.Errorf("%w: unknown entry side %q on account %s", apperrors.ErrValidation, line.Side, line.AccountCode)
		}
	}

	// A self-balancing entry against a single account moves nothing and only
	// pollutes the ledger, so it is rejected outright.
	if len(accountCodes) < 2 {
		return fmt.Errorf("%w: journal must touch at least two distinct accounts", apperrors.ErrValidation)
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits sum to %s, credits sum to %s", apperrors.ErrUnbalanced, debits.String(), credits.String())
	}
	return nil
}

// NetDeltas folds a journal's lines into per-account signed balance changes.
func NetDeltas(lines []domain.JournalLine) (map[string]decimal.Decimal, error) {
	deltas := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		signed, err := SignedAmount(line)
		if err != nil {
			return nil, err
		}
		deltas[line.AccountCode] = deltas[line.AccountCode].Add(signed)
	}
	return deltas, nil
}
