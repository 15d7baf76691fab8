package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finbooks/general_ledger_app/internal/apperrors"
	"github.com/finbooks/general_ledger_app/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/general_ledger_app/internal/core/ports/services"
	"github.com/finbooks/general_ledger_app/internal/core/services"
	"github.com/finbooks/general_ledger_app/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock PeriodRepository ---
type MockPeriodRepository struct {
	mock.Mock
}

var _ portsrepo.PeriodRepositoryFacade = (*MockPeriodRepository)(nil)

func (m *MockPeriodRepository) FindPeriodByID(ctx context.Context, tenantID string, periodID string) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, tenantID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) ListPeriods(ctx context.Context, tenantID string) ([]domain.AccountingPeriod, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) SavePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) ReplacePeriod(ctx context.Context, period domain.AccountingPeriod, expectedStatus domain.PeriodStatus) error {
	args := m.Called(ctx, period, expectedStatus)
	return args.Error(0)
}

// --- Test Suite Setup ---
type PeriodServiceTestSuite struct {
	suite.Suite
	mockRepo *MockPeriodRepository
	service  portssvc.PeriodSvcFacade
	tenantID string
	userID   string
	january  domain.AccountingPeriod
}

func (suite *PeriodServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockPeriodRepository)
	suite.service = services.NewPeriodService(suite.mockRepo)
	suite.tenantID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.january = domain.AccountingPeriod{
		TenantID:  suite.tenantID,
		PeriodID:  "2026-01",
		Name:      "January 2026",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.PeriodOpen,
	}
}

// --- Test Cases ---

func (suite *PeriodServiceTestSuite) TestCreatePeriod_Success() {
	ctx := context.Background()
	req := dto.CreatePeriodRequest{
		PeriodID:  "2026-02",
		Name:      "February 2026",
		StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	suite.mockRepo.On("FindPeriodByID", ctx, suite.tenantID, "2026-02").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("ListPeriods", ctx, suite.tenantID).Return([]domain.AccountingPeriod{suite.january}, nil).Once()
	suite.mockRepo.On("SavePeriod", ctx, mock.MatchedBy(func(p domain.AccountingPeriod) bool {
		return p.PeriodID == "2026-02" && p.Status == domain.PeriodOpen
	})).Return(nil).Once()

	period, err := suite.service.CreatePeriod(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.PeriodOpen, period.Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestCreatePeriod_Overlap() {
	ctx := context.Background()
	req := dto.CreatePeriodRequest{
		PeriodID:  "2026-01b",
		Name:      "Mid January",
		StartDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
	}

	suite.mockRepo.On("FindPeriodByID", ctx, suite.tenantID, "2026-01b").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("ListPeriods", ctx, suite.tenantID).Return([]domain.AccountingPeriod{suite.january}, nil).Once()

	period, err := suite.service.CreatePeriod(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(period)
	suite.mockRepo.AssertNotCalled(suite.T(), "SavePeriod", mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestCanPost_OpenPeriod() {
	ctx := context.Background()
	date := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	suite.mockRepo.On("FindPeriodForDate", ctx, suite.tenantID, date).Return(&suite.january, nil).Once()

	period, err := suite.service.CanPost(ctx, suite.tenantID, date, domain.StandardEntry)

	suite.Require().NoError(err)
	suite.Equal("2026-01", period.PeriodID)
}

func (suite *PeriodServiceTestSuite) TestCanPost_ClosedPeriodRejectsStandard() {
	ctx := context.Background()
	closed := suite.january
	closed.Status = domain.PeriodClosed
	date := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	suite.mockRepo.On("FindPeriodForDate", ctx, suite.tenantID, date).Return(&closed, nil).Once()

	period, err := suite.service.CanPost(ctx, suite.tenantID, date, domain.StandardEntry)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPeriodClosed)
	suite.Nil(period)
}

func (suite *PeriodServiceTestSuite) TestCanPost_ClosedPeriodAcceptsAdjusting() {
	ctx := context.Background()
	closed := suite.january
	closed.Status = domain.PeriodClosed
	date := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	suite.mockRepo.On("FindPeriodForDate", ctx, suite.tenantID, date).Return(&closed, nil).Once()

	period, err := suite.service.CanPost(ctx, suite.tenantID, date, domain.AdjustingEntry)

	suite.Require().NoError(err)
	suite.Equal(domain.PeriodClosed, period.Status)
}

func (suite *PeriodServiceTestSuite) TestCanPost_LockedPeriodRejectsEverything() {
	ctx := context.Background()
	locked := suite.january
	locked.Status = domain.PeriodLocked
	date := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	suite.mockRepo.On("FindPeriodForDate", ctx, suite.tenantID, date).Return(&locked, nil).Times(3)

	for _, kind := range []domain.EntryKind{domain.StandardEntry, domain.AdjustingEntry, domain.ClosingEntry} {
		period, err := suite.service.CanPost(ctx, suite.tenantID, date, kind)
		suite.Require().Error(err)
		suite.ErrorIs(err, apperrors.ErrPeriodClosed)
		suite.Nil(period)
	}
}

func (suite *PeriodServiceTestSuite) TestCanPost_NoPeriodCoversDate() {
	ctx := context.Background()
	date := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)
	suite.mockRepo.On("FindPeriodForDate", ctx, suite.tenantID, date).Return(nil, apperrors.ErrNotFound).Once()

	period, err := suite.service.CanPost(ctx, suite.tenantID, date, domain.StandardEntry)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(period)
}

func (suite *PeriodServiceTestSuite) TestTransition_OpenToClosed() {
	ctx := context.Background()
	suite.mockRepo.On("FindPeriodByID", ctx, suite.tenantID, "2026-01").Return(&suite.january, nil).Once()
	// The write must be pinned to the status the transition was computed
	// from, so a concurrent transition makes this one fail instead of
	// regressing the state machine.
	suite.mockRepo.On("ReplacePeriod", ctx, mock.MatchedBy(func(p domain.AccountingPeriod) bool {
		return p.Status == domain.PeriodClosed && p.LastUpdatedBy == suite.userID
	}), domain.PeriodOpen).Return(nil).Once()

	period, err := suite.service.Transition(ctx, suite.tenantID, "2026-01", domain.PeriodClosed, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.PeriodClosed, period.Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestTransition_StaleReadLosesRace() {
	ctx := context.Background()
	suite.mockRepo.On("FindPeriodByID", ctx, suite.tenantID, "2026-01").Return(&suite.january, nil).Once()
	// The stored row no longer holds the status the transition read, so the
	// guarded write reports a conflict.
	suite.mockRepo.On("ReplacePeriod", ctx, mock.AnythingOfType("domain.AccountingPeriod"), domain.PeriodOpen).Return(apperrors.ErrConflict).Once()

	period, err := suite.service.Transition(ctx, suite.tenantID, "2026-01", domain.PeriodClosed, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(period)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestTransition_SkippingStateRejected() {
	ctx := context.Background()
	suite.mockRepo.On("FindPeriodByID", ctx, suite.tenantID, "2026-01").Return(&suite.january, nil).Once()

	period, err := suite.service.Transition(ctx, suite.tenantID, "2026-01", domain.PeriodLocked, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPeriodTransition)
	suite.Nil(period)
	suite.mockRepo.AssertNotCalled(suite.T(), "ReplacePeriod", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestTransition_BackwardRejected() {
	ctx := context.Background()
	locked := suite.january
	locked.Status = domain.PeriodLocked
	suite.mockRepo.On("FindPeriodByID", ctx, suite.tenantID, "2026-01").Return(&locked, nil).Once()

	period, err := suite.service.Transition(ctx, suite.tenantID, "2026-01", domain.PeriodClosed, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPeriodTransition)
	suite.Nil(period)
}

func TestPeriodServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PeriodServiceTestSuite))
}
