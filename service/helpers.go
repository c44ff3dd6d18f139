package service

import (
	"context"
	"time"

	"adwheel/apperr"
	"adwheel/models"
)

// loadUser fetches a user and maps absence to the not-found failure every
// workflow shares.
func loadUser(ctx context.Context, users UserRepository, id int64) (*models.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Store, err, "could not load user")
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	return user, nil
}

// requireActive rejects banned users.
func requireActive(user *models.User) error {
	if user.IsBanned {
		return apperr.New(apperr.Banned, "user is banned")
	}
	return nil
}

// checkCooldown enforces the per-user gap between gated actions.
func checkCooldown(user *models.User, now time.Time, cooldown time.Duration) error {
	if user.LastActionTime != nil && now.Sub(*user.LastActionTime) < cooldown {
		return apperr.New(apperr.RateLimit, "too many actions, slow down")
	}
	return nil
}
