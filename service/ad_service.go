package service

import (
	"context"
	"time"

	"adwheel/apperr"
	"adwheel/config"
	"adwheel/events"
	"adwheel/models"
)

// adService implements the AdService interface
type adService struct {
	users  UserRepository
	tokens TokenService
	bus    EventBus
	cfg    *config.Config
	now    func() time.Time
}

// NewAdService creates a new ad reward service
func NewAdService(users UserRepository, tokens TokenService, bus EventBus, cfg *config.Config) AdService {
	return &adService{
		users:  users,
		tokens: tokens,
		bus:    bus,
		cfg:    cfg,
		now:    time.Now,
	}
}

// WatchAd credits the fixed reward for one watched ad. The token is spent
// before any check runs; a failed check does not refund it.
func (s *adService) WatchAd(ctx context.Context, userID int64, tokenID string) (*models.WatchAdResult, error) {
	if err := s.tokens.ValidateAndConsume(ctx, userID, tokenID, models.ActionWatchAd); err != nil {
		return nil, err
	}

	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	if err := requireActive(user); err != nil {
		return nil, err
	}

	now := s.now()
	if err := checkCooldown(user, now, s.cfg.ActionCooldown); err != nil {
		return nil, err
	}
	if user.AdsWatchedToday >= s.cfg.AdDailyCap {
		return nil, apperr.New(apperr.CapExceeded, "daily ad limit reached")
	}

	oldBalance := user.Balance
	user.Balance += s.cfg.AdReward
	user.AdsWatchedToday++
	user.LastActionTime = &now

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Wrap(apperr.Store, err, "could not save ad reward")
	}

	s.bus.Emit(ctx, events.BalanceChangeEvent{
		UserID:     userID,
		OldBalance: oldBalance,
		NewBalance: user.Balance,
		Source:     "watchAd",
	})

	return &models.WatchAdResult{
		NewBalance:  user.Balance,
		NewAdsCount: user.AdsWatchedToday,
	}, nil
}
