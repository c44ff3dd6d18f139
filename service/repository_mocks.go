package service

import (
	"context"
	"time"

	"adwheel/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, id int64, refBy *int64) (*models.User, error) {
	args := m.Called(ctx, id, refBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SetRefBy(ctx context.Context, id, refBy int64) (bool, error) {
	args := m.Called(ctx, id, refBy)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) IncrementReferrals(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Credit(ctx context.Context, id int64, amount float64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, id int64, amount float64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockUserRepository) ResetDailyCounters(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockTokenRepository is a mock implementation of TokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, token *models.ActionToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) Take(ctx context.Context, id string) (*models.ActionToken, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActionToken), args.Error(1)
}

func (m *MockTokenRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, w *models.Withdrawal) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

// MockCommissionLedger is a mock implementation of CommissionLedger
type MockCommissionLedger struct {
	mock.Mock
}

func (m *MockCommissionLedger) Record(ctx context.Context, referrerID, refereeID int64, day time.Time, amount float64) error {
	args := m.Called(ctx, referrerID, refereeID, day, amount)
	return args.Error(0)
}

// MockTokenService is a mock implementation of TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(ctx context.Context, userID int64, kind models.ActionKind) (string, error) {
	args := m.Called(ctx, userID, kind)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateAndConsume(ctx context.Context, userID int64, tokenID string, kind models.ActionKind) error {
	args := m.Called(ctx, userID, tokenID, kind)
	return args.Error(0)
}
