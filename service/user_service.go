package service

import (
	"context"
	"time"

	"adwheel/apperr"
	"adwheel/config"
	"adwheel/events"
	"adwheel/models"
	"adwheel/repository"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// userService implements the UserService interface
type userService struct {
	users  UserRepository
	ledger CommissionLedger
	tokens TokenService
	bus    EventBus
	cfg    *config.Config
	now    func() time.Time
}

// NewUserService creates a new user service
func NewUserService(users UserRepository, ledger CommissionLedger, tokens TokenService, bus EventBus, cfg *config.Config) UserService {
	return &userService{
		users:  users,
		ledger: ledger,
		tokens: tokens,
		bus:    bus,
		cfg:    cfg,
		now:    time.Now,
	}
}

// GetUserData returns the user's current state.
func (s *userService) GetUserData(ctx context.Context, userID int64) (*models.User, error) {
	return loadUser(ctx, s.users, userID)
}

// Register idempotently creates the user. A referrer can only ever be set by
// the first call that supplies one; the referrer's counter increment is
// best-effort and never fails the registration.
func (s *userService) Register(ctx context.Context, userID int64, refBy *int64) (*models.RegisterResult, error) {
	if refBy != nil && *refBy == userID {
		refBy = nil // self-referral carries no reward
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Store, err, "could not check existing user")
	}

	if user != nil {
		if user.RefBy == nil && refBy != nil {
			set, err := s.users.SetRefBy(ctx, userID, *refBy)
			if err != nil {
				return nil, apperr.Wrap(apperr.Store, err, "could not link referrer")
			}
			if set {
				user.RefBy = refBy
				s.creditReferrer(ctx, *refBy)
			}
		}
		return &models.RegisterResult{AlreadyRegistered: true, User: user}, nil
	}

	user, err = s.users.Create(ctx, userID, refBy)
	if err != nil {
		return nil, apperr.Wrap(apperr.Store, err, "could not create user")
	}

	if refBy != nil {
		s.creditReferrer(ctx, *refBy)
	}

	s.bus.Emit(ctx, events.UserRegisteredEvent{UserID: userID, RefBy: refBy})

	return &models.RegisterResult{AlreadyRegistered: false, User: user}, nil
}

// creditReferrer bumps the referrer's counter. Failure is logged and
// swallowed; a missing or unreachable referrer never blocks registration.
func (s *userService) creditReferrer(ctx context.Context, referrerID int64) {
	if err := s.users.IncrementReferrals(ctx, referrerID); err != nil {
		log.WithFields(log.Fields{
			"referrer_id": referrerID,
		}).WithError(err).Warn("could not increment referral count")
	}
}

// Commission pays the referrer their cut of the referee's ad activity. The
// ledger row goes in first; its unique constraint is what stops a second
// payout for the same pair and day.
func (s *userService) Commission(ctx context.Context, referrerID, refereeID int64) (*models.CommissionResult, error) {
	referee, err := s.users.GetByID(ctx, refereeID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Store, err, "could not load referee")
	}
	if referee == nil {
		return nil, apperr.New(apperr.NotFound, "referee not found")
	}
	if referee.AdsWatchedToday == 0 {
		return nil, apperr.New(apperr.Validation, "referee has no rewarded activity today")
	}

	referrer, err := s.users.GetByID(ctx, referrerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Store, err, "could not load referrer")
	}
	if referrer == nil {
		return nil, apperr.New(apperr.NotFound, "referrer not found")
	}

	amount := s.cfg.AdReward * s.cfg.CommissionRate

	err = s.ledger.Record(ctx, referrerID, refereeID, s.now(), amount)
	if errors.Is(err, repository.ErrDuplicateCommission) {
		return nil, apperr.New(apperr.Validation, "commission already credited today")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Store, err, "could not record commission")
	}

	if err := s.users.Credit(ctx, referrerID, amount); err != nil {
		return nil, apperr.Wrap(apperr.Store, err, "could not credit commission")
	}

	newBalance := referrer.Balance + amount
	s.bus.Emit(ctx, events.BalanceChangeEvent{
		UserID:     referrerID,
		OldBalance: referrer.Balance,
		NewBalance: newBalance,
		Source:     "commission",
	})

	return &models.CommissionResult{Amount: amount, NewBalance: newBalance}, nil
}

// GenerateAction issues an action token after confirming the user may act.
func (s *userService) GenerateAction(ctx context.Context, userID int64, kind models.ActionKind) (string, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return "", err
	}
	if err := requireActive(user); err != nil {
		return "", err
	}
	return s.tokens.Issue(ctx, userID, kind)
}
