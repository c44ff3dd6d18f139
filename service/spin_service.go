package service

import (
	"context"
	"math/rand"
	"time"

	"adwheel/apperr"
	"adwheel/config"
	"adwheel/events"
	"adwheel/models"
)

// spinSectors are the wheel faces in sector order. Value 5 appears twice, so
// it lands with double the probability of the other prizes.
var spinSectors = [5]float64{5, 10, 15, 20, 5}

// spinService implements the SpinService interface
type spinService struct {
	users  UserRepository
	tokens TokenService
	bus    EventBus
	cfg    *config.Config
	now    func() time.Time
	pick   func(n int) int
}

// NewSpinService creates a new prize wheel service
func NewSpinService(users UserRepository, tokens TokenService, bus EventBus, cfg *config.Config) SpinService {
	return &spinService{
		users:  users,
		tokens: tokens,
		bus:    bus,
		cfg:    cfg,
		now:    time.Now,
		pick:   rand.Intn,
	}
}

// RegisterSpin is step one of the two-step spin: the token is spent here and
// a pending spin is armed on the user. No prize yet.
func (s *spinService) RegisterSpin(ctx context.Context, userID int64, tokenID string) (int, error) {
	if err := s.tokens.ValidateAndConsume(ctx, userID, tokenID, models.ActionSpin); err != nil {
		return 0, err
	}

	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return 0, err
	}
	if err := requireActive(user); err != nil {
		return 0, err
	}

	now := s.now()
	if err := checkCooldown(user, now, s.cfg.ActionCooldown); err != nil {
		return 0, err
	}
	if user.SpinsToday >= s.cfg.SpinDailyCap {
		return 0, apperr.New(apperr.CapExceeded, "daily spin limit reached")
	}

	user.SpinsToday++
	user.SpinPending = true
	user.LastActionTime = &now

	if err := s.users.Update(ctx, user); err != nil {
		return 0, apperr.Wrap(apperr.Store, err, "could not register spin")
	}

	return user.SpinsToday, nil
}

// SpinResult resolves the armed spin into a prize. Without a pending spin
// there is nothing to resolve; prizes are never handed out on a bare call.
func (s *spinService) SpinResult(ctx context.Context, userID int64) (*models.SpinOutcome, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	if err := requireActive(user); err != nil {
		return nil, err
	}
	if !user.SpinPending {
		return nil, apperr.New(apperr.Token, "no registered spin to resolve")
	}

	sector := s.pick(len(spinSectors))
	prize := spinSectors[sector]

	oldBalance := user.Balance
	user.Balance += prize
	user.SpinPending = false

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Wrap(apperr.Store, err, "could not save spin prize")
	}

	s.bus.Emit(ctx, events.BalanceChangeEvent{
		UserID:     userID,
		OldBalance: oldBalance,
		NewBalance: user.Balance,
		Source:     "spinResult",
	})

	return &models.SpinOutcome{Prize: prize, Sector: sector}, nil
}
