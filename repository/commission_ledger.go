package repository

import (
	"context"
	"time"

	"adwheel/store"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// ErrDuplicateCommission reports that a commission for this referral pair
// was already recorded today.
var ErrDuplicateCommission = errors.New("commission already recorded for this referral today")

// CommissionLedger implements the service.CommissionLedger interface. One row
// per referrer, referee and day; the unique constraint makes a second payout
// attempt for the same day fail before any balance moves.
type CommissionLedger struct {
	s *store.Client
}

// NewCommissionLedger creates a new commission ledger
func NewCommissionLedger(s *store.Client) *CommissionLedger {
	return &CommissionLedger{s: s}
}

const uniqueViolation = "23505"

// Record writes the ledger entry for today's commission.
func (r *CommissionLedger) Record(ctx context.Context, referrerID, refereeID int64, day time.Time, amount float64) error {
	err := r.s.Insert(ctx, "commission_ledger", map[string]any{
		"referrer_id": referrerID,
		"referee_id":  refereeID,
		"day":         day.UTC().Truncate(24 * time.Hour),
		"amount":      amount,
		"created_at":  time.Now(),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateCommission
		}
		return errors.Wrap(err, "record commission")
	}
	return nil
}
