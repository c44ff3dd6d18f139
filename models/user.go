package models

import (
	"time"
)

// User represents a mini-app user with a reward balance
type User struct {
	ID              int64      `db:"id"`
	Balance         float64    `db:"balance"`
	AdsWatchedToday int        `db:"ads_watched_today"`
	SpinsToday      int        `db:"spins_today"`
	ReferralsCount  int        `db:"referrals_count"`
	IsBanned        bool       `db:"is_banned"`
	SpinPending     bool       `db:"spin_pending"`
	LastActionTime  *time.Time `db:"last_action_time"`
	RefBy           *int64     `db:"ref_by"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// RegisterResult reports the outcome of a register call (returned to the user)
type RegisterResult struct {
	AlreadyRegistered bool
	User              *User
}

// WatchAdResult reports the reward applied for a watched ad
type WatchAdResult struct {
	NewBalance  float64
	NewAdsCount int
}

// CommissionResult reports a referral commission payout
type CommissionResult struct {
	Amount     float64
	NewBalance float64
}
