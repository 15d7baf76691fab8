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
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, tenantID string, accountCode string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, tenantID string, accountCodes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, tenantID string, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) ReplaceAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, accountCodes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, tenantID, accountCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, tenantID string, balanceChanges map[string]decimal.Decimal, updatedBy string, now time.Time) error {
	args := m.Called(ctx, tx, tenantID, balanceChanges, updatedBy, now)
	return args.Error(0)
}

// --- Test Suite Setup ---
type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	service  portssvc.AccountSvcFacade
	tenantID string
	userID   string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockRepo)
	suite.tenantID = uuid.NewString()
	suite.userID = uuid.NewString()
}

// --- Test Cases ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode:  "1000",
		Name:         "Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
	}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.tenantID, "1000").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.AccountCode == "1000" && a.IsActive && a.PostingAllowed && a.Balance.IsZero()
	})).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.Equal("1000", account.AccountCode)
	suite.Equal(domain.Asset, account.AccountType)
	suite.Equal(suite.userID, account.CreatedBy)
	suite.True(account.IsActive)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode:  "1000",
		Name:         "Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
	}

	existing := &domain.Account{TenantID: suite.tenantID, AccountCode: "1000"}
	suite.mockRepo.On("FindAccountByCode", ctx, suite.tenantID, "1000").Return(existing, nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(account)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_BadCodeFormat() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode:  "10",
		Name:         "Too short",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
	}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.tenantID, "10").Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(account)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ControlMustNotAllowPosting() {
	ctx := context.Background()
	postingAllowed := true
	req := dto.CreateAccountRequest{
		AccountCode:    "9000",
		Name:           "Debtors control",
		AccountType:    domain.Asset,
		SpecialType:    domain.Control,
		CurrencyCode:   "USD",
		PostingAllowed: &postingAllowed,
	}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.tenantID, "9000").Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(account)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_CompanionLinkTargetMissing() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode:  "1500",
		Name:         "Equipment",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		CompanionLinks: []dto.CompanionLinkRequest{
			{Kind: domain.LinkAccumulatedDepreciation, AccountCode: "1599"},
		},
	}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.tenantID, "1500").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByCode", ctx, suite.tenantID, "1599").Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(account)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_RenameOnly() {
	ctx := context.Background()
	existing := &domain.Account{
		TenantID:       suite.tenantID,
		AccountCode:    "1000",
		Name:           "Cash",
		AccountType:    domain.Asset,
		CurrencyCode:   "USD",
		IsActive:       true,
		PostingAllowed: true,
		Balance:        decimal.Zero,
	}
	newName := "Cash and equivalents"
	req := dto.UpdateAccountRequest{Name: &newName}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.tenantID, "1000").Return(existing, nil).Once()
	suite.mockRepo.On("ReplaceAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Name == newName && a.AccountCode == "1000"
	})).Return(nil).Once()

	account, err := suite.service.UpdateAccount(ctx, suite.tenantID, "1000", req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(newName, account.Name)
	// The stored instance is untouched; updates go through a fresh validated copy.
	suite.Equal("Cash", existing.Name)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount() {
	ctx := context.Background()
	existing := &domain.Account{
		TenantID:       suite.tenantID,
		AccountCode:    "1000",
		Name:           "Cash",
		AccountType:    domain.Asset,
		CurrencyCode:   "USD",
		IsActive:       true,
		PostingAllowed: true,
		Balance:        decimal.Zero,
	}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.tenantID, "1000").Return(existing, nil).Once()
	suite.mockRepo.On("ReplaceAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return !a.IsActive && a.LastUpdatedBy == suite.userID
	})).Return(nil).Once()

	account, err := suite.service.DeactivateAccount(ctx, suite.tenantID, "1000", suite.userID)

	suite.Require().NoError(err)
	suite.False(account.IsActive)
	suite.True(existing.IsActive)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetAccountByCode_NotFound() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByCode", ctx, suite.tenantID, "4040").Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.GetAccountByCode(ctx, suite.tenantID, "4040")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(account)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
