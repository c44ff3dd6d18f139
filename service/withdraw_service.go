package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"adwheel/apperr"
	"adwheel/config"
	"adwheel/events"
	"adwheel/models"

	log "github.com/sirupsen/logrus"
)

// withdrawService implements the WithdrawService interface
type withdrawService struct {
	users       UserRepository
	tokens      TokenService
	withdrawals WithdrawalRepository
	bus         EventBus
	cfg         *config.Config
	now         func() time.Time
}

// NewWithdrawService creates a new withdrawal service
func NewWithdrawService(users UserRepository, tokens TokenService, withdrawals WithdrawalRepository, bus EventBus, cfg *config.Config) WithdrawService {
	return &withdrawService{
		users:       users,
		tokens:      tokens,
		withdrawals: withdrawals,
		bus:         bus,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Withdraw files a payout request and deducts the amount. Amount validation
// runs before the token is spent; everything after runs on a consumed token.
// The request row is written before the deduction — if the deduction then
// fails, the pending row stays and the failure is escalated, not rolled back.
func (s *withdrawService) Withdraw(ctx context.Context, userID int64, tokenID string, amount float64, binanceID string) (*models.WithdrawResult, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, apperr.New(apperr.Validation, "invalid withdrawal amount")
	}
	if amount < s.cfg.MinWithdrawal {
		return nil, apperr.New(apperr.Validation,
			fmt.Sprintf("minimum withdrawal is %.0f", s.cfg.MinWithdrawal))
	}
	if binanceID == "" {
		return nil, apperr.New(apperr.Validation, "missing payout destination")
	}

	if err := s.tokens.ValidateAndConsume(ctx, userID, tokenID, models.ActionWithdraw); err != nil {
		return nil, err
	}

	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	if err := requireActive(user); err != nil {
		return nil, err
	}
	if err := checkCooldown(user, s.now(), s.cfg.ActionCooldown); err != nil {
		return nil, err
	}
	if user.Balance < amount {
		return nil, apperr.New(apperr.Validation, "insufficient balance")
	}

	withdrawal := &models.Withdrawal{
		UserID:    userID,
		Amount:    amount,
		BinanceID: binanceID,
		Status:    models.WithdrawalStatusPending,
		CreatedAt: s.now(),
	}
	if err := s.withdrawals.Create(ctx, withdrawal); err != nil {
		return nil, apperr.Wrap(apperr.Store, err, "could not file withdrawal")
	}

	if err := s.users.DeductBalance(ctx, userID, amount); err != nil {
		// The pending request is already on file with no matching
		// deduction. Nothing here can compensate; this needs an operator.
		log.WithFields(log.Fields{
			"user_id": userID,
			"amount":  amount,
		}).WithError(err).Error("withdrawal filed but balance deduction failed")
		return nil, apperr.Wrap(apperr.Store, err,
			"withdrawal recorded but balance update failed, contact support")
	}

	newBalance := user.Balance - amount
	s.bus.Emit(ctx, events.WithdrawalRequestedEvent{
		UserID:    userID,
		Amount:    amount,
		BinanceID: binanceID,
	})
	s.bus.Emit(ctx, events.BalanceChangeEvent{
		UserID:     userID,
		OldBalance: user.Balance,
		NewBalance: newBalance,
		Source:     "withdraw",
	})

	return &models.WithdrawResult{
		NewBalance: newBalance,
		Status:     models.WithdrawalStatusPending,
	}, nil
}
