package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/finbooks/general_ledger_app/internal/apperrors"
	"github.com/finbooks/general_ledger_app/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/general_ledger_app/internal/core/ports/services"
	"github.com/finbooks/general_ledger_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

const accountPageSize = 500

// reportingService derives read models from accounts and the posted journal
// history. It never writes anything.
type reportingService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	journalRepo portsrepo.JournalRepositoryFacade
	periodRepo  portsrepo.PeriodRepositoryFacade
}

// NewReportingService creates a new reporting service instance.
func NewReportingService(accountRepo portsrepo.AccountRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade, periodRepo portsrepo.PeriodRepositoryFacade) portssvc.ReportingSvcFacade {
	return &reportingService{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		periodRepo:  periodRepo,
	}
}

// TrialBalance lists per-account balances split into debit and credit
// columns. With a nil asOf the stored balances are used directly; with an
// asOf the posted history is replayed up to that instant. A non-empty
// periodID bounds a nil asOf to the period's end.
func (s *reportingService) TrialBalance(ctx context.Context, tenantID string, periodID string, asOf *time.Time) (*domain.TrialBalance, error) {
	now := time.Now()

	if asOf == nil && periodID != "" {
		period, err := s.periodRepo.FindPeriodByID(ctx, tenantID, periodID)
		if err != nil {
			return nil, err
		}
		if period.EndDate.Before(now) {
			end := period.EndDate
			asOf = &end
		}
	}

	accounts, err := s.loadAllAccounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	balances := make(map[string]decimal.Decimal, len(accounts))
	reportTime := now
	if asOf == nil {
		for _, account := range accounts {
			balances[account.AccountCode] = account.Balance
		}
	} else {
		reportTime = *asOf
		balances, err = s.replayBalances(ctx, tenantID, asOf)
		if err != nil {
			return nil, err
		}
	}

	tb := &domain.TrialBalance{
		TenantID:    tenantID,
		PeriodID:    periodID,
		AsOf:        reportTime,
		Rows:        make([]domain.TrialBalanceRow, 0, len(accounts)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, account := range accounts {
		balance := balances[account.AccountCode]
		if balance.IsZero() {
			continue
		}
		row := domain.TrialBalanceRow{
			AccountCode: account.AccountCode,
			AccountName: account.Name,
			AccountType: account.AccountType,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		if balance.IsPositive() {
			row.Debit = balance
		} else {
			row.Credit = balance.Neg()
		}
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
		tb.Rows = append(tb.Rows, row)
	}

	tb.Imbalance = tb.TotalDebit.Sub(tb.TotalCredit)
	tb.OutOfBalance = !tb.Imbalance.IsZero()
	if tb.OutOfBalance {
		s.LogWarn(ctx, "Trial balance does not sum to zero", "tenantID", tenantID, "imbalance", tb.Imbalance.String())
	}
	return tb, nil
}

// ProfitAndLoss aggregates revenue and expense movement over a date window.
func (s *reportingService) ProfitAndLoss(ctx context.Context, tenantID string, from, to time.Time) (*domain.PAndLReport, error) {
	accounts, movement, err := s.windowMovement(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	report := &domain.PAndLReport{NetProfit: decimal.Zero}
	for _, account := range accounts {
		net := movement[account.AccountCode]
		if net.IsZero() {
			continue
		}
		switch account.AccountType {
		case domain.Revenue:
			// Revenue accumulates as credits; present it positive.
			report.Revenue = append(report.Revenue, domain.AccountAmount{
				AccountCode: account.AccountCode,
				Name:        account.Name,
				NetAmount:   net.Neg(),
			})
			report.NetProfit = report.NetProfit.Add(net.Neg())
		case domain.Expense:
			report.Expenses = append(report.Expenses, domain.AccountAmount{
				AccountCode: account.AccountCode,
				Name:        account.Name,
				NetAmount:   net,
			})
			report.NetProfit = report.NetProfit.Sub(net)
		}
	}
	return report, nil
}

// BalanceSheet presents assets, liabilities and equity as of a point in
// time. Undistributed revenue and expense movement is folded into equity as
// a current-earnings line so the accounting identity holds.
func (s *reportingService) BalanceSheet(ctx context.Context, tenantID string, asOf time.Time) (*domain.BalanceSheetReport, error) {
	accounts, err := s.loadAllAccounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	balances, err := s.replayBalances(ctx, tenantID, &asOf)
	if err != nil {
		return nil, err
	}

	report := &domain.BalanceSheetReport{
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	earnings := decimal.Zero
	for _, account := range accounts {
		balance := balances[account.AccountCode]
		if balance.IsZero() {
			continue
		}
		amount := domain.AccountAmount{AccountCode: account.AccountCode, Name: account.Name}
		switch account.AccountType {
		case domain.Asset:
			amount.NetAmount = balance
			report.Assets = append(report.Assets, amount)
			report.TotalAssets = report.TotalAssets.Add(balance)
		case domain.Liability:
			amount.NetAmount = balance.Neg()
			report.Liabilities = append(report.Liabilities, amount)
			report.TotalLiabilities = report.TotalLiabilities.Add(balance.Neg())
		case domain.Equity:
			amount.NetAmount = balance.Neg()
			report.Equity = append(report.Equity, amount)
			report.TotalEquity = report.TotalEquity.Add(balance.Neg())
		case domain.Revenue, domain.Expense:
			earnings = earnings.Add(balance.Neg())
		}
	}
	if !earnings.IsZero() {
		report.Equity = append(report.Equity, domain.AccountAmount{
			Name:      "Current period earnings",
			NetAmount: earnings,
		})
		report.TotalEquity = report.TotalEquity.Add(earnings)
	}
	return report, nil
}

// CashFlowStatement classifies movement over a window into operating,
// investing and financing sections. Amounts are stated as cash impact, so
// each is the negated signed movement: a credit-side movement (revenue
// earned, debt raised) shows as an inflow, a debit-side movement (asset
// purchased, expense paid) as an outflow. Polarity-exempt asset accounts,
// clearing and suspense and their kin, are working items and classify as
// operating rather than investing.
func (s *reportingService) CashFlowStatement(ctx context.Context, tenantID string, from, to time.Time) (*domain.CashFlowReport, error) {
	accounts, movement, err := s.windowMovement(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	report := &domain.CashFlowReport{
		NetOperating: decimal.Zero,
		NetInvesting: decimal.Zero,
		NetFinancing: decimal.Zero,
	}
	for _, account := range accounts {
		net := movement[account.AccountCode]
		if net.IsZero() {
			continue
		}
		amount := domain.AccountAmount{
			AccountCode: account.AccountCode,
			Name:        account.Name,
			NetAmount:   net.Neg(),
		}
		switch account.AccountType {
		case domain.Revenue, domain.Expense:
			report.Operating = append(report.Operating, amount)
			report.NetOperating = report.NetOperating.Add(amount.NetAmount)
		case domain.Asset:
			if account.IsPolarityExempt() {
				report.Operating = append(report.Operating, amount)
				report.NetOperating = report.NetOperating.Add(amount.NetAmount)
			} else {
				report.Investing = append(report.Investing, amount)
				report.NetInvesting = report.NetInvesting.Add(amount.NetAmount)
			}
		case domain.Liability, domain.Equity:
			report.Financing = append(report.Financing, amount)
			report.NetFinancing = report.NetFinancing.Add(amount.NetAmount)
		}
	}
	report.NetChange = report.NetOperating.Add(report.NetInvesting).Add(report.NetFinancing)
	return report, nil
}

// loadAllAccounts pages through the tenant's full chart, sorted by code.
func (s *reportingService) loadAllAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	var all []domain.Account
	offset := 0
	for {
		page, err := s.accountRepo.ListAccounts(ctx, tenantID, accountPageSize, offset)
		if err != nil {
			s.LogError(ctx, err, "Failed to list accounts for reporting", "tenantID", tenantID)
			return nil, err
		}
		all = append(all, page...)
		if len(page) < accountPageSize {
			break
		}
		offset += accountPageSize
	}
	sort.Slice(all, func(i, j int) bool { return all[i].AccountCode < all[j].AccountCode })
	return all, nil
}

// replayBalances folds the posted history up to upTo into per-account
// signed balances, using the same signed-amount computation the posting
// path applies incrementally.
func (s *reportingService) replayBalances(ctx context.Context, tenantID string, upTo *time.Time) (map[string]decimal.Decimal, error) {
	journals, err := s.journalRepo.LoadJournalHistory(ctx, tenantID, upTo)
	if err != nil {
		s.LogError(ctx, err, "Failed to load journal history", "tenantID", tenantID)
		return nil, err
	}
	return foldBalances(journals)
}

// replayBalancesBefore folds the posted history strictly before the given
// time into per-account signed balances.
func (s *reportingService) replayBalancesBefore(ctx context.Context, tenantID string, before time.Time) (map[string]decimal.Decimal, error) {
	journals, err := s.journalRepo.LoadJournalHistoryBefore(ctx, tenantID, before)
	if err != nil {
		s.LogError(ctx, err, "Failed to load journal history", "tenantID", tenantID)
		return nil, err
	}
	return foldBalances(journals)
}

func foldBalances(journals []domain.Journal) (map[string]decimal.Decimal, error) {
	balances := make(map[string]decimal.Decimal)
	for _, journal := range journals {
		for _, line := range journal.Lines {
			signed, err := accounting.SignedAmount(line)
			if err != nil {
				return nil, fmt.Errorf("%w: journal %s: %s", apperrors.ErrInternal, journal.JournalID, err.Error())
			}
			balances[line.AccountCode] = balances[line.AccountCode].Add(signed)
		}
	}
	return balances, nil
}

// windowMovement computes per-account net movement inside [from, to] as the
// difference of two replays, plus the chart for classification.
func (s *reportingService) windowMovement(ctx context.Context, tenantID string, from, to time.Time) ([]domain.Account, map[string]decimal.Decimal, error) {
	if to.Before(from) {
		return nil, nil, fmt.Errorf("%w: report window end precedes start", apperrors.ErrValidation)
	}

	accounts, err := s.loadAllAccounts(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}

	atEnd, err := s.replayBalances(ctx, tenantID, &to)
	if err != nil {
		return nil, nil, err
	}
	// Opening position is everything strictly before the window start; the
	// bound is exclusive at the query level so an entry posted exactly at
	// from lands in the window, never in the opening position.
	atStart, err := s.replayBalancesBefore(ctx, tenantID, from)
	if err != nil {
		return nil, nil, err
	}

	movement := make(map[string]decimal.Decimal, len(atEnd))
	for code, end := range atEnd {
		movement[code] = end.Sub(atStart[code])
	}
	for code, start := range atStart {
		if _, ok := atEnd[code]; !ok {
			movement[code] = start.Neg()
		}
	}
	return accounts, movement, nil
}
