package repository

import (
	"context"
	"time"

	"adwheel/models"
	"adwheel/store"

	"github.com/pkg/errors"
)

// WithdrawalRepository implements the service.WithdrawalRepository interface
type WithdrawalRepository struct {
	s *store.Client
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(s *store.Client) *WithdrawalRepository {
	return &WithdrawalRepository{s: s}
}

// Create files a payout request. Rows are never updated by this service
// afterwards; status transitions belong to the payout operator.
func (r *WithdrawalRepository) Create(ctx context.Context, w *models.Withdrawal) error {
	if w.Status == "" {
		w.Status = models.WithdrawalStatusPending
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}

	err := r.s.Insert(ctx, "withdrawals", map[string]any{
		"user_id":    w.UserID,
		"amount":     w.Amount,
		"binance_id": w.BinanceID,
		"status":     w.Status,
		"created_at": w.CreatedAt,
	})
	if err != nil {
		return errors.Wrapf(err, "create withdrawal for user %d", w.UserID)
	}
	return nil
}
