package services

import (
	"context"
	"fmt"
	"time"

	"github.com/finbooks/general_ledger_app/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/general_ledger_app/internal/core/ports/services"
	"github.com/finbooks/general_ledger_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// integrityService recomputes ledger state independently of the stored
// balances and reports any disagreement. It never corrects anything.
type integrityService struct {
	BaseService
	accountRepo  portsrepo.AccountRepositoryFacade
	journalRepo  portsrepo.JournalRepositoryFacade
	periodRepo   portsrepo.PeriodRepositoryFacade
	baseCurrency string
}

// NewIntegrityService creates a new integrity service instance.
func NewIntegrityService(accountRepo portsrepo.AccountRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade, periodRepo portsrepo.PeriodRepositoryFacade, baseCurrency string) portssvc.IntegritySvcFacade {
	return &integrityService{
		accountRepo:  accountRepo,
		journalRepo:  journalRepo,
		periodRepo:   periodRepo,
		baseCurrency: baseCurrency,
	}
}

// ValidateGLIntegrity replays the full posted history per account and
// compares the result to the stored balances. Any drift becomes a finding;
// nothing is healed.
func (s *integrityService) ValidateGLIntegrity(ctx context.Context, tenantID string) (*domain.IntegrityReport, error) {
	accounts, err := s.loadChart(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	journals, err := s.journalRepo.LoadJournalHistory(ctx, tenantID, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to load journal history for integrity check", "tenantID", tenantID)
		return nil, err
	}

	replayed := make(map[string]decimal.Decimal, len(accounts))
	// firstUnbalanced records, per account, the earliest journal touching it
	// whose own lines fail re-validation. That journal is the best available
	// explanation for the drift.
	firstUnbalanced := make(map[string]string)
	for _, journal := range journals {
		balanced := accounting.ValidateJournalBalance(journal.Lines, s.baseCurrency) == nil
		for _, line := range journal.Lines {
			signed, err := accounting.SignedAmount(line)
			if err != nil {
				signed = decimal.Zero
				balanced = false
			}
			replayed[line.AccountCode] = replayed[line.AccountCode].Add(signed)
			if !balanced {
				if _, seen := firstUnbalanced[line.AccountCode]; !seen {
					firstUnbalanced[line.AccountCode] = journal.JournalID
				}
			}
		}
	}

	report := &domain.IntegrityReport{
		TenantID:        tenantID,
		CheckedAt:       time.Now(),
		AccountsChecked: len(accounts),
		JournalsChecked: len(journals),
	}

	stored := make(map[string]decimal.Decimal, len(accounts))
	for _, account := range accounts {
		stored[account.AccountCode] = account.Balance
	}
	for _, account := range accounts {
		expected := replayed[account.AccountCode]
		actual := account.Balance
		if expected.Equal(actual) {
			continue
		}
		report.Findings = append(report.Findings, domain.IntegrityFinding{
			AccountCode:             account.AccountCode,
			Expected:                expected,
			Actual:                  actual,
			Drift:                   actual.Sub(expected),
			FirstOffendingJournalID: firstUnbalanced[account.AccountCode],
		})
	}
	// History can reference accounts missing from the chart; those drifts
	// surface too.
	for code, expected := range replayed {
		if _, ok := stored[code]; ok {
			continue
		}
		report.Findings = append(report.Findings, domain.IntegrityFinding{
			AccountCode:             code,
			Expected:                expected,
			Actual:                  decimal.Zero,
			Drift:                   expected.Neg(),
			FirstOffendingJournalID: firstUnbalanced[code],
		})
	}

	report.Clean = len(report.Findings) == 0
	if !report.Clean {
		s.LogWarn(ctx, "GL integrity check found drift", "tenantID", tenantID, "findings", len(report.Findings))
	}
	return report, nil
}

// ReconcileTrialBalance compares balances computed from history against a
// caller-supplied expected set, e.g. a bank statement or a sub-ledger
// export. Expected codes missing from the chart are reported, not dropped.
func (s *integrityService) ReconcileTrialBalance(ctx context.Context, tenantID string, periodID string, expected map[string]decimal.Decimal) (*domain.ReconciliationReport, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, tenantID, periodID)
	if err != nil {
		return nil, err
	}

	accounts, err := s.loadChart(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(accounts))
	for _, account := range accounts {
		known[account.AccountCode] = struct{}{}
	}

	upTo := period.EndDate
	journals, err := s.journalRepo.LoadJournalHistory(ctx, tenantID, &upTo)
	if err != nil {
		s.LogError(ctx, err, "Failed to load journal history for reconciliation", "tenantID", tenantID, "periodID", periodID)
		return nil, err
	}
	computed := make(map[string]decimal.Decimal)
	for _, journal := range journals {
		for _, line := range journal.Lines {
			signed, err := accounting.SignedAmount(line)
			if err != nil {
				continue
			}
			computed[line.AccountCode] = computed[line.AccountCode].Add(signed)
		}
	}

	report := &domain.ReconciliationReport{
		TenantID:  tenantID,
		PeriodID:  periodID,
		CheckedAt: time.Now(),
	}
	for code, want := range expected {
		if _, ok := known[code]; !ok {
			report.UnknownAccounts = append(report.UnknownAccounts, code)
			continue
		}
		got := computed[code]
		variance := got.Sub(want)
		if variance.IsZero() {
			report.Matched++
			continue
		}
		pct := decimal.Zero
		if !want.IsZero() {
			pct = variance.Div(want).Mul(oneHundred)
		}
		report.Variances = append(report.Variances, domain.ReconciliationVariance{
			AccountCode:     code,
			ExpectedBalance: want,
			ComputedBalance: got,
			Variance:        variance,
			VariancePercent: pct,
		})
	}
	return report, nil
}

// GenerateExceptionReport runs the defense-in-depth scans over one period:
// journals that no longer re-validate, lines on inactive or posting-closed
// accounts, and companion links pointing at accounts that do not exist.
func (s *integrityService) GenerateExceptionReport(ctx context.Context, tenantID string, periodID string) (*domain.ExceptionReport, error) {
	if _, err := s.periodRepo.FindPeriodByID(ctx, tenantID, periodID); err != nil {
		return nil, err
	}

	accounts, err := s.loadChart(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	chart := make(map[string]domain.Account, len(accounts))
	for _, account := range accounts {
		chart[account.AccountCode] = account
	}

	journals, err := s.journalRepo.LoadJournalHistory(ctx, tenantID, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to load journal history for exception report", "tenantID", tenantID, "periodID", periodID)
		return nil, err
	}

	report := &domain.ExceptionReport{
		TenantID:  tenantID,
		PeriodID:  periodID,
		CheckedAt: time.Now(),
	}

	for _, journal := range journals {
		if journal.PeriodID != periodID {
			continue
		}
		if err := accounting.ValidateJournalBalance(journal.Lines, s.baseCurrency); err != nil {
			report.Exceptions = append(report.Exceptions, domain.Exception{
				Kind:      domain.ExceptionUnbalancedJournal,
				JournalID: journal.JournalID,
				Detail:    err.Error(),
				Amount:    journalImbalance(journal.Lines),
			})
		}
		for _, line := range journal.Lines {
			account, ok := chart[line.AccountCode]
			if !ok {
				report.Exceptions = append(report.Exceptions, domain.Exception{
					Kind:        domain.ExceptionInactiveAccountLine,
					AccountCode: line.AccountCode,
					JournalID:   journal.JournalID,
					Detail:      fmt.Sprintf("line references account %s which is not in the chart", line.AccountCode),
					Amount:      line.Amount,
				})
				continue
			}
			if !account.IsActive {
				report.Exceptions = append(report.Exceptions, domain.Exception{
					Kind:        domain.ExceptionInactiveAccountLine,
					AccountCode: line.AccountCode,
					JournalID:   journal.JournalID,
					Detail:      fmt.Sprintf("line posted to inactive account %s", line.AccountCode),
					Amount:      line.Amount,
				})
			}
			if !account.PostingAllowed {
				report.Exceptions = append(report.Exceptions, domain.Exception{
					Kind:        domain.ExceptionPostingDisallowedLine,
					AccountCode: line.AccountCode,
					JournalID:   journal.JournalID,
					Detail:      fmt.Sprintf("line posted to account %s which is closed to direct posting", line.AccountCode),
					Amount:      line.Amount,
				})
			}
		}
	}

	for _, account := range accounts {
		for _, link := range account.CompanionLinks {
			if _, ok := chart[link.AccountCode]; !ok {
				report.Exceptions = append(report.Exceptions, domain.Exception{
					Kind:        domain.ExceptionOrphanedCompanionLink,
					AccountCode: account.AccountCode,
					Detail:      fmt.Sprintf("companion link %s points at missing account %s", link.Kind, link.AccountCode),
				})
			}
		}
	}

	report.Clean = len(report.Exceptions) == 0
	return report, nil
}

// loadChart pages through the tenant's full chart of accounts.
func (s *integrityService) loadChart(ctx context.Context, tenantID string) ([]domain.Account, error) {
	var all []domain.Account
	offset := 0
	for {
		page, err := s.accountRepo.ListAccounts(ctx, tenantID, accountPageSize, offset)
		if err != nil {
			s.LogError(ctx, err, "Failed to list accounts for integrity check", "tenantID", tenantID)
			return nil, err
		}
		all = append(all, page...)
		if len(page) < accountPageSize {
			break
		}
		offset += accountPageSize
	}
	return all, nil
}

// journalImbalance returns debits minus credits in the base currency.
func journalImbalance(lines []domain.JournalLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		base := line.BaseAmount()
		switch line.Side {
		case domain.Debit:
			total = total.Add(base)
		case domain.Credit:
			total = total.Sub(base)
		}
	}
	return total
}
