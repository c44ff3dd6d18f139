package models

import "time"

// CommissionEntry is a per-day-per-referral ledger row. The unique constraint
// on (referrer, referee, day) is what stops duplicate payouts.
type CommissionEntry struct {
	ID         int64     `db:"id"`
	ReferrerID int64     `db:"referrer_id"`
	RefereeID  int64     `db:"referee_id"`
	Day        time.Time `db:"day"`
	Amount     float64   `db:"amount"`
	CreatedAt  time.Time `db:"created_at"`
}
