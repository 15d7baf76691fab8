package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/general_ledger_app/internal/apperrors"
	"github.com/finbooks/general_ledger_app/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/general_ledger_app/internal/core/ports/services"
	"github.com/finbooks/general_ledger_app/internal/dto"
	"github.com/finbooks/general_ledger_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// journalService implements the journal entry engine on top of the journal
// repository, the account reader and the period gate.
type journalService struct {
	BaseService
	journalRepo  portsrepo.JournalRepositoryFacade
	accountSvc   portssvc.AccountReaderSvc
	periodGate   portssvc.PeriodGate
	baseCurrency string
}

// NewJournalService creates a new journal service instance. baseCurrency is
// the tenant ledger currency every line settles into.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountSvc portssvc.AccountReaderSvc, periodGate portssvc.PeriodGate, baseCurrency string) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo:  journalRepo,
		accountSvc:   accountSvc,
		periodGate:   periodGate,
		baseCurrency: baseCurrency,
	}
}

// PostJournal validates and posts a balanced journal entry. All validation
// runs before any mutation; the repository then applies the journal, its
// lines and the balance deltas atomically.
func (s *journalService) PostJournal(ctx context.Context, tenantID string, req dto.CreateJournalRequest, postedBy string) (*domain.Journal, error) {
	return s.post(ctx, tenantID, req, postedBy, nil)
}

// post is the single posting path shared by PostJournal and ReverseJournal.
// reversalOf, when set, makes the saved entry a reversing entry and the
// repository links it to the original in the same transaction.
func (s *journalService) post(ctx context.Context, tenantID string, req dto.CreateJournalRequest, postedBy string, reversalOf *string) (*domain.Journal, error) {
	logger := s.GetLogger(ctx)

	kind := req.Kind
	if kind == "" {
		kind = domain.StandardEntry
	}

	// Period gate runs first so a closed period rejects the entry before any
	// other validation work.
	period, err := s.periodGate.CanPost(ctx, tenantID, req.PostingDate, kind)
	if err != nil {
		s.LogWarn(ctx, "Posting rejected by period gate", "tenantID", tenantID, "postingDate", req.PostingDate, "error", err.Error())
		return nil, err
	}

	now := time.Now()
	journalID := req.JournalID
	if journalID == "" {
		journalID = uuid.NewString()
	}

	lines, err := s.buildLines(journalID, req.Lines, postedBy, now)
	if err != nil {
		return nil, err
	}

	accounts, err := s.resolvePostableAccounts(ctx, tenantID, lines)
	if err != nil {
		return nil, err
	}

	if err := accounting.ValidateJournalBalance(lines, s.baseCurrency); err != nil {
		s.LogWarn(ctx, "Journal failed balance validation", "tenantID", tenantID, "journalID", journalID, "error", err.Error())
		return nil, err
	}

	// Idempotency: a client-supplied journal ID must not already exist.
	if req.JournalID != "" {
		existing, err := s.journalRepo.FindJournalByID(ctx, tenantID, req.JournalID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to check for duplicate journal", "journalID", req.JournalID)
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: journal %s already exists", apperrors.ErrDuplicate, req.JournalID)
		}
	}

	deltas, err := accounting.NetDeltas(lines)
	if err != nil {
		return nil, err
	}

	// Dry-run the balance deltas against the fetched snapshots so polarity
	// violations fail before the store is touched. The repository re-applies
	// the same deltas under row locks.
	if err := s.checkPolarity(accounts, deltas, postedBy, now); err != nil {
		s.LogWarn(ctx, "Journal rejected by polarity check", "tenantID", tenantID, "journalID", journalID, "error", err.Error())
		return nil, err
	}

	journal := domain.Journal{
		JournalID:   journalID,
		TenantID:    tenantID,
		PostingDate: req.PostingDate,
		PeriodID:    period.PeriodID,
		Reference:   req.Reference,
		Description: req.Description,
		Kind:        kind,
		Status:      domain.Posted,
		PostedBy:    postedBy,
		ReversalOf:  reversalOf,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     postedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: postedBy,
		},
	}

	if err := s.journalRepo.SaveJournal(ctx, journal, lines, deltas); err != nil {
		s.LogError(ctx, err, "Failed to save journal", "tenantID", tenantID, "journalID", journalID)
		return nil, err
	}

	journal.Lines = lines
	logger.Info("Journal posted", "tenantID", tenantID, "journalID", journalID, "periodID", period.PeriodID, "lineCount", len(lines))
	return &journal, nil
}

// ReverseJournal posts a mirror of the original entry through the normal
// posting path and links the two journals. Each journal may be reversed at
// most once.
func (s *journalService) ReverseJournal(ctx context.Context, tenantID string, journalID string, req dto.ReverseJournalRequest, userID string) (*domain.Journal, error) {
	original, err := s.journalRepo.FindJournalByID(ctx, tenantID, journalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find journal for reversal", "tenantID", tenantID, "journalID", journalID)
		return nil, err
	}
	if original.Status == domain.Reversed || original.ReversedBy != nil {
		return nil, fmt.Errorf("%w: journal %s", apperrors.ErrAlreadyReversed, journalID)
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: journal %s is not in a reversible state", apperrors.ErrConflict, journalID)
	}

	originalLines, err := s.journalRepo.FindLinesByJournalID(ctx, tenantID, journalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load lines for reversal", "tenantID", tenantID, "journalID", journalID)
		return nil, err
	}

	postingDate := time.Now()
	if req.PostingDate != nil {
		postingDate = *req.PostingDate
	}

	mirror := dto.CreateJournalRequest{
		PostingDate: postingDate,
		Reference:   original.Reference,
		Description: fmt.Sprintf("Reversal of %s: %s", journalID, req.Reason),
		Kind:        original.Kind,
		Lines:       make([]dto.CreateJournalLineRequest, 0, len(originalLines)),
	}
	for _, line := range originalLines {
		rate := line.ExchangeRate
		mirror.Lines = append(mirror.Lines, dto.CreateJournalLineRequest{
			AccountCode:  line.AccountCode,
			Amount:       line.Amount,
			Side:         line.Side.Opposite(),
			CurrencyCode: line.CurrencyCode,
			ExchangeRate: &rate,
			Notes:        line.Notes,
		})
	}

	reversing, err := s.post(ctx, tenantID, mirror, userID, &journalID)
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Journal reversed", "tenantID", tenantID, "journalID", journalID, "reversedBy", reversing.JournalID)
	return reversing, nil
}

// GetJournalByID retrieves a journal with its lines populated.
func (s *journalService) GetJournalByID(ctx context.Context, tenantID string, journalID string) (*domain.Journal, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, tenantID, journalID)
	if err != nil {
		return nil, err
	}
	lines, err := s.journalRepo.FindLinesByJournalID(ctx, tenantID, journalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load journal lines", "tenantID", tenantID, "journalID", journalID)
		return nil, err
	}
	journal.Lines = lines
	return journal, nil
}

// ListJournals retrieves a page of journals, optionally with their lines.
func (s *journalService) ListJournals(ctx context.Context, tenantID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	journals, nextToken, err := s.journalRepo.ListJournals(ctx, tenantID, limit, params.NextToken, params.IncludeReversals)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journals", "tenantID", tenantID)
		return nil, err
	}

	if params.IncludeLines && len(journals) > 0 {
		ids := make([]string, len(journals))
		for i := range journals {
			ids[i] = journals[i].JournalID
		}
		linesByID, err := s.journalRepo.FindLinesByJournalIDs(ctx, tenantID, ids)
		if err != nil {
			s.LogError(ctx, err, "Failed to load lines for journal listing", "tenantID", tenantID)
			return nil, err
		}
		for i := range journals {
			journals[i].Lines = linesByID[journals[i].JournalID]
		}
	}

	resp := &dto.ListJournalsResponse{
		Journals:  make([]dto.JournalResponse, len(journals)),
		NextToken: nextToken,
	}
	for i := range journals {
		resp.Journals[i] = dto.ToJournalResponse(&journals[i])
	}
	return resp, nil
}

// ListLinesByAccount retrieves a page of one account's ledger lines.
func (s *journalService) ListLinesByAccount(ctx context.Context, tenantID string, accountCode string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	// Surface a clean not-found instead of an empty ledger for bad codes.
	if _, err := s.accountSvc.GetAccountByCode(ctx, tenantID, accountCode); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	lines, nextToken, err := s.journalRepo.ListLinesByAccount(ctx, tenantID, accountCode, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list account ledger", "tenantID", tenantID, "accountCode", accountCode)
		return nil, err
	}

	return &dto.ListLinesResponse{
		Lines:     dto.ToJournalLineResponses(lines),
		NextToken: nextToken,
	}, nil
}

// buildLines turns the request lines into domain lines with identities,
// defaulted exchange rates and audit fields.
func (s *journalService) buildLines(journalID string, reqLines []dto.CreateJournalLineRequest, postedBy string, now time.Time) ([]domain.JournalLine, error) {
	if len(reqLines) < 2 {
		return nil, fmt.Errorf("%w: journal must have at least two lines", apperrors.ErrValidation)
	}

	lines := make([]domain.JournalLine, 0, len(reqLines))
	for _, rl := range reqLines {
		rate := decimal.NewFromInt(1)
		if rl.ExchangeRate != nil {
			rate = *rl.ExchangeRate
		}
		lines = append(lines, domain.JournalLine{
			LineID:       uuid.NewString(),
			JournalID:    journalID,
			AccountCode:  rl.AccountCode,
			Amount:       rl.Amount,
			Side:         rl.Side,
			CurrencyCode: rl.CurrencyCode,
			ExchangeRate: rate,
			Notes:        rl.Notes,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     postedBy,
				LastUpdatedAt: now,
				LastUpdatedBy: postedBy,
			},
		})
	}
	return lines, nil
}

// resolvePostableAccounts fetches every referenced account and rejects the
// journal if any is missing, inactive or closed to direct posting.
func (s *journalService) resolvePostableAccounts(ctx context.Context, tenantID string, lines []domain.JournalLine) (map[string]domain.Account, error) {
	codeSet := make(map[string]struct{}, len(lines))
	codes := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, seen := codeSet[line.AccountCode]; !seen {
			codeSet[line.AccountCode] = struct{}{}
			codes = append(codes, line.AccountCode)
		}
	}

	accounts, err := s.accountSvc.GetAccountsByCodes(ctx, tenantID, codes)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts for posting", "tenantID", tenantID)
		return nil, err
	}

	for _, code := range codes {
		account, ok := accounts[code]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, code)
		}
		if !account.IsActive {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrAccountInactive, code)
		}
		if !account.PostingAllowed {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrPostingNotAllowed, code)
		}
	}
	return accounts, nil
}

// checkPolarity applies the net deltas to in-memory account snapshots, which
// re-runs each account's polarity validation without persisting anything.
func (s *journalService) checkPolarity(accounts map[string]domain.Account, deltas map[string]decimal.Decimal, updatedBy string, now time.Time) error {
	for code, delta := range deltas {
		account, ok := accounts[code]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, code)
		}
		if _, err := account.ApplyDelta(delta, updatedBy, now); err != nil {
			return err
		}
	}
	return nil
}
