package repository

import (
	"context"
	"time"

	"adwheel/models"
	"adwheel/store"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

var tokenColumns = []string{"id", "user_id", "action_type", "created_at"}

// TokenRepository implements the service.TokenRepository interface over the
// temp_actions table.
type TokenRepository struct {
	s *store.Client
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(s *store.Client) *TokenRepository {
	return &TokenRepository{s: s}
}

// Create persists a freshly issued action token.
func (r *TokenRepository) Create(ctx context.Context, token *models.ActionToken) error {
	err := r.s.Insert(ctx, "temp_actions", map[string]any{
		"id":          token.ID,
		"user_id":     token.UserID,
		"action_type": string(token.Kind),
		"created_at":  token.CreatedAt,
	})
	if err != nil {
		return errors.Wrap(err, "create action token")
	}
	return nil
}

// Take removes the token and returns what it was, in one statement. A nil
// result means the token does not exist: never issued, already consumed, or
// swept after expiry. Two concurrent takers cannot both get the row.
func (r *TokenRepository) Take(ctx context.Context, id string) (*models.ActionToken, error) {
	row := r.s.DeleteReturning(ctx, "temp_actions", store.Filter{"id": id}, tokenColumns)

	var token models.ActionToken
	var kind string
	err := row.Scan(&token.ID, &token.UserID, &kind, &token.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "take action token")
	}
	token.Kind = models.ActionKind(kind)
	return &token, nil
}

// DeleteCreatedBefore removes all tokens older than the cutoff and returns
// how many were swept.
func (r *TokenRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	removed, err := r.s.Delete(ctx, "temp_actions", store.Filter{"created_at <": cutoff})
	if err != nil {
		return 0, errors.Wrap(err, "sweep expired action tokens")
	}
	return removed, nil
}
