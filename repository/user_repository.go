package repository

import (
	"context"
	"time"

	"adwheel/models"
	"adwheel/store"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

var userColumns = []string{
	"id", "balance", "ads_watched_today", "spins_today", "referrals_count",
	"is_banned", "spin_pending", "last_action_time", "ref_by",
	"created_at", "updated_at",
}

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	s *store.Client
}

// NewUserRepository creates a new user repository
func NewUserRepository(s *store.Client) *UserRepository {
	return &UserRepository{s: s}
}

// GetByID retrieves a user by id, or nil when no such user exists.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.s.SelectOne(ctx, "users", userColumns, store.Filter{"id": id})

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get user %d", id)
	}
	return user, nil
}

// Create inserts a new user with zeroed counters and the optional referrer.
func (r *UserRepository) Create(ctx context.Context, id int64, refBy *int64) (*models.User, error) {
	err := r.s.Insert(ctx, "users", map[string]any{
		"id":     id,
		"ref_by": refBy,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create user %d", id)
	}

	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.Errorf("user %d missing after insert", id)
	}
	return user, nil
}

// Update persists the workflow-mutable fields of a user. Identity, ban state
// and the referral linkage are written through their own operations.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	matched, err := r.s.Update(ctx, "users", map[string]any{
		"balance":           user.Balance,
		"ads_watched_today": user.AdsWatchedToday,
		"spins_today":       user.SpinsToday,
		"spin_pending":      user.SpinPending,
		"last_action_time":  user.LastActionTime,
		"updated_at":        time.Now(),
	}, store.Filter{"id": user.ID})
	if err != nil {
		return errors.Wrapf(err, "update user %d", user.ID)
	}
	if matched == 0 {
		return errors.Errorf("user %d not found", user.ID)
	}
	return nil
}

// SetRefBy sets the referrer once. Returns false when ref_by was already
// set; it is never overwritten.
func (r *UserRepository) SetRefBy(ctx context.Context, id, refBy int64) (bool, error) {
	matched, err := r.s.Update(ctx, "users", map[string]any{
		"ref_by":     refBy,
		"updated_at": time.Now(),
	}, store.Filter{"id": id, "ref_by": nil})
	if err != nil {
		return false, errors.Wrapf(err, "set ref_by for user %d", id)
	}
	return matched > 0, nil
}

// IncrementReferrals adds one to a user's referral counter store-side.
func (r *UserRepository) IncrementReferrals(ctx context.Context, id int64) error {
	matched, err := r.s.Update(ctx, "users", map[string]any{
		"referrals_count": store.Add(1),
		"updated_at":      time.Now(),
	}, store.Filter{"id": id})
	if err != nil {
		return errors.Wrapf(err, "increment referrals for user %d", id)
	}
	if matched == 0 {
		return errors.Errorf("user %d not found", id)
	}
	return nil
}

// Credit adds amount to a user's balance store-side.
func (r *UserRepository) Credit(ctx context.Context, id int64, amount float64) error {
	if amount <= 0 {
		return errors.New("amount must be positive")
	}
	matched, err := r.s.Update(ctx, "users", map[string]any{
		"balance":    store.Add(amount),
		"updated_at": time.Now(),
	}, store.Filter{"id": id})
	if err != nil {
		return errors.Wrapf(err, "credit user %d", id)
	}
	if matched == 0 {
		return errors.Errorf("user %d not found", id)
	}
	return nil
}

// DeductBalance removes amount from a user's balance, failing without a
// write when the remaining balance would go negative.
func (r *UserRepository) DeductBalance(ctx context.Context, id int64, amount float64) error {
	if amount <= 0 {
		return errors.New("amount must be positive")
	}
	matched, err := r.s.Update(ctx, "users", map[string]any{
		"balance":    store.Add(-amount),
		"updated_at": time.Now(),
	}, store.Filter{"id": id, "balance >=": amount})
	if err != nil {
		return errors.Wrapf(err, "deduct balance for user %d", id)
	}
	if matched == 0 {
		user, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return errors.Errorf("user %d not found", id)
		}
		return errors.Errorf("insufficient balance: have %.2f, need %.2f", user.Balance, amount)
	}
	return nil
}

// ResetDailyCounters zeroes every user's daily ad and spin counters and
// returns the number of users touched. Runs from the day-boundary job, not
// from any workflow.
func (r *UserRepository) ResetDailyCounters(ctx context.Context) (int64, error) {
	matched, err := r.s.Update(ctx, "users", map[string]any{
		"ads_watched_today": 0,
		"spins_today":       0,
		"updated_at":        time.Now(),
	}, store.Filter{})
	if err != nil {
		return 0, errors.Wrap(err, "reset daily counters")
	}
	return matched, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Balance,
		&user.AdsWatchedToday,
		&user.SpinsToday,
		&user.ReferralsCount,
		&user.IsBanned,
		&user.SpinPending,
		&user.LastActionTime,
		&user.RefBy,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
