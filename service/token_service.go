package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"adwheel/apperr"
	"adwheel/models"

	log "github.com/sirupsen/logrus"
)

// tokenSize is the entropy of a token id in bytes.
const tokenSize = 32

type tokenService struct {
	tokens TokenRepository
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates the action token manager.
func NewTokenService(tokens TokenRepository, ttl time.Duration) TokenService {
	return &tokenService{
		tokens: tokens,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *tokenService) Issue(ctx context.Context, userID int64, kind models.ActionKind) (string, error) {
	buf := make([]byte, tokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", apperr.Wrap(apperr.Store, err, "could not generate action token")
	}

	token := &models.ActionToken{
		ID:        hex.EncodeToString(buf),
		UserID:    userID,
		Kind:      kind,
		CreatedAt: s.now(),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", apperr.Wrap(apperr.Store, err, "could not issue action token")
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"kind":    kind,
	}).Debug("action token issued")

	return token.ID, nil
}

// ValidateAndConsume spends a token for one gated action. The lookup is the
// deletion, so a token observed here can never be observed again — a missing
// row covers never-issued, already-consumed and swept-after-expiry alike.
func (s *tokenService) ValidateAndConsume(ctx context.Context, userID int64, tokenID string, kind models.ActionKind) error {
	if tokenID == "" {
		return apperr.New(apperr.Token, "missing action token")
	}

	token, err := s.tokens.Take(ctx, tokenID)
	if err != nil {
		return apperr.Wrap(apperr.Store, err, "could not check action token")
	}
	if token == nil {
		return apperr.New(apperr.Token, "action token not found or already used")
	}

	// The row is already gone at this point. A mismatched or stale token
	// stays deleted; there is nothing to probe twice.
	if token.UserID != userID || token.Kind != kind {
		log.WithFields(log.Fields{
			"user_id":  userID,
			"expected": kind,
			"actual":   token.Kind,
		}).Warn("action token mismatch, purged")
		return apperr.New(apperr.Token, "action token not valid for this user or action")
	}

	if s.now().Sub(token.CreatedAt) > s.ttl {
		return apperr.New(apperr.Token, "action token expired")
	}

	return nil
}
