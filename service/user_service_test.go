package service

import (
	"context"
	"errors"
	"testing"

	"adwheel/apperr"
	"adwheel/models"
	"adwheel/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserService(users *MockUserRepository, ledger *MockCommissionLedger, tokens *MockTokenService) UserService {
	return NewUserService(users, ledger, tokens, newTestBus(), testConfig())
}

func TestUserService_GetUserData(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := newUserService(users, nil, nil)

	existing := &models.User{ID: 42, Balance: 12}
	users.On("GetByID", ctx, int64(42)).Return(existing, nil)

	user, err := svc.GetUserData(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, existing, user)
}

func TestUserService_GetUserData_NotFound(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := newUserService(users, nil, nil)

	users.On("GetByID", ctx, int64(42)).Return(nil, nil)

	_, err := svc.GetUserData(ctx, 42)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestUserService_Register_NewUser(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := newUserService(users, nil, nil)

	created := &models.User{ID: 42, RefBy: int64Ptr(7)}

	users.On("GetByID", ctx, int64(42)).Return(nil, nil)
	users.On("Create", ctx, int64(42), mock.MatchedBy(func(p *int64) bool {
		return p != nil && *p == 7
	})).Return(created, nil)
	users.On("IncrementReferrals", ctx, int64(7)).Return(nil)

	res, err := svc.Register(ctx, 42, int64Ptr(7))
	require.NoError(t, err)
	assert.False(t, res.AlreadyRegistered)
	assert.Equal(t, created, res.User)
	users.AssertExpectations(t)
}

func TestUserService_Register_Idempotent(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := newUserService(users, nil, nil)

	// ref_by already settled; a different referrer must not overwrite it.
	existing := &models.User{ID: 42, RefBy: int64Ptr(7)}
	users.On("GetByID", ctx, int64(42)).Return(existing, nil)

	res, err := svc.Register(ctx, 42, int64Ptr(99))
	require.NoError(t, err)
	assert.True(t, res.AlreadyRegistered)
	assert.Equal(t, int64(7), *res.User.RefBy)

	users.AssertNotCalled(t, "SetRefBy", mock.Anything, mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_Register_LateReferrer(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := newUserService(users, nil, nil)

	existing := &models.User{ID: 42}
	users.On("GetByID", ctx, int64(42)).Return(existing, nil)
	users.On("SetRefBy", ctx, int64(42), int64(7)).Return(true, nil)
	users.On("IncrementReferrals", ctx, int64(7)).Return(nil)

	res, err := svc.Register(ctx, 42, int64Ptr(7))
	require.NoError(t, err)
	assert.True(t, res.AlreadyRegistered)
	assert.Equal(t, int64(7), *res.User.RefBy)
	users.AssertExpectations(t)
}

func TestUserService_Register_ReferrerIncrementBestEffort(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := newUserService(users, nil, nil)

	created := &models.User{ID: 42, RefBy: int64Ptr(7)}
	users.On("GetByID", ctx, int64(42)).Return(nil, nil)
	users.On("Create", ctx, int64(42), mock.Anything).Return(created, nil)
	// Referrer is gone; registration must still succeed.
	users.On("IncrementReferrals", ctx, int64(7)).Return(errors.New("user 7 not found"))

	res, err := svc.Register(ctx, 42, int64Ptr(7))
	require.NoError(t, err)
	assert.False(t, res.AlreadyRegistered)
}

func TestUserService_Register_SelfReferralIgnored(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := newUserService(users, nil, nil)

	created := &models.User{ID: 42}
	users.On("GetByID", ctx, int64(42)).Return(nil, nil)
	users.On("Create", ctx, int64(42), (*int64)(nil)).Return(created, nil)

	res, err := svc.Register(ctx, 42, int64Ptr(42))
	require.NoError(t, err)
	assert.False(t, res.AlreadyRegistered)
	users.AssertNotCalled(t, "IncrementReferrals", mock.Anything, mock.Anything)
}

func TestUserService_Commission_Pays(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	ledger := new(MockCommissionLedger)
	svc := newUserService(users, ledger, nil)

	users.On("GetByID", ctx, int64(2)).Return(&models.User{ID: 2, AdsWatchedToday: 4}, nil)
	users.On("GetByID", ctx, int64(1)).Return(&models.User{ID: 1, Balance: 10}, nil)
	ledger.On("Record", ctx, int64(1), int64(2), mock.Anything, mock.AnythingOfType("float64")).Return(nil)
	users.On("Credit", ctx, int64(1), mock.AnythingOfType("float64")).Return(nil)

	res, err := svc.Commission(ctx, 1, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.15, res.Amount, 1e-9)
	assert.InDelta(t, 10.15, res.NewBalance, 1e-9)
	users.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestUserService_Commission_RefereeInactive(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	ledger := new(MockCommissionLedger)
	svc := newUserService(users, ledger, nil)

	users.On("GetByID", ctx, int64(2)).Return(&models.User{ID: 2, AdsWatchedToday: 0}, nil)

	_, err := svc.Commission(ctx, 1, 2)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	ledger.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_Commission_ReferrerMissing(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	ledger := new(MockCommissionLedger)
	svc := newUserService(users, ledger, nil)

	users.On("GetByID", ctx, int64(2)).Return(&models.User{ID: 2, AdsWatchedToday: 1}, nil)
	users.On("GetByID", ctx, int64(1)).Return(nil, nil)

	_, err := svc.Commission(ctx, 1, 2)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestUserService_Commission_OncePerDay(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	ledger := new(MockCommissionLedger)
	svc := newUserService(users, ledger, nil)

	users.On("GetByID", ctx, int64(2)).Return(&models.User{ID: 2, AdsWatchedToday: 1}, nil)
	users.On("GetByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
	ledger.On("Record", ctx, int64(1), int64(2), mock.Anything, mock.AnythingOfType("float64")).
		Return(repository.ErrDuplicateCommission)

	_, err := svc.Commission(ctx, 1, 2)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	users.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_GenerateAction(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenService)
	svc := newUserService(users, nil, tokens)

	users.On("GetByID", ctx, int64(42)).Return(&models.User{ID: 42}, nil)
	tokens.On("Issue", ctx, int64(42), models.ActionWithdraw).Return("tok-9", nil)

	id, err := svc.GenerateAction(ctx, 42, models.ActionWithdraw)
	require.NoError(t, err)
	assert.Equal(t, "tok-9", id)
}

func TestUserService_GenerateAction_Banned(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenService)
	svc := newUserService(users, nil, tokens)

	users.On("GetByID", ctx, int64(42)).Return(&models.User{ID: 42, IsBanned: true}, nil)

	_, err := svc.GenerateAction(ctx, 42, models.ActionWatchAd)
	require.Error(t, err)
	assert.Equal(t, apperr.Banned, apperr.KindOf(err))
	tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
}
