package service

import (
	"context"
	"time"

	"adwheel/events"
	"adwheel/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id, or nil when no such user exists
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// Create inserts a new user with zeroed counters and the optional referrer
	Create(ctx context.Context, id int64, refBy *int64) (*models.User, error)

	// Update persists the workflow-mutable fields of a user
	Update(ctx context.Context, user *models.User) error

	// SetRefBy sets the referrer exactly once; false means it was already set
	SetRefBy(ctx context.Context, id, refBy int64) (bool, error)

	// IncrementReferrals adds one to a user's referral counter store-side
	IncrementReferrals(ctx context.Context, id int64) error

	// Credit adds amount to a user's balance store-side
	Credit(ctx context.Context, id int64, amount float64) error

	// DeductBalance removes amount, failing without a write on insufficient funds
	DeductBalance(ctx context.Context, id int64, amount float64) error

	// ResetDailyCounters zeroes all daily ad/spin counters
	ResetDailyCounters(ctx context.Context) (int64, error)
}

// TokenRepository defines the interface for action token data access
type TokenRepository interface {
	// Create persists a freshly issued action token
	Create(ctx context.Context, token *models.ActionToken) error

	// Take atomically removes the token and returns what it was; nil means
	// the token does not exist (never issued, consumed, or swept)
	Take(ctx context.Context, id string) (*models.ActionToken, error)

	// DeleteCreatedBefore sweeps tokens older than the cutoff
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// WithdrawalRepository defines the interface for withdrawal data access
type WithdrawalRepository interface {
	// Create files a payout request; never updated afterwards by this service
	Create(ctx context.Context, w *models.Withdrawal) error
}

// CommissionLedger defines the interface for the per-day referral payout log
type CommissionLedger interface {
	// Record writes the ledger entry; repository.ErrDuplicateCommission when
	// one already exists for this pair and day
	Record(ctx context.Context, referrerID, refereeID int64, day time.Time, amount float64) error
}

// EventBus defines the interface for publishing domain events
type EventBus interface {
	Emit(ctx context.Context, event events.Event)
}

// TokenService defines the interface for the action token manager
type TokenService interface {
	// Issue creates a single-use token for a gated action. Callers must have
	// already confirmed the user is allowed to act.
	Issue(ctx context.Context, userID int64, kind models.ActionKind) (string, error)

	// ValidateAndConsume spends the token. Every outcome, success or not,
	// leaves the token gone.
	ValidateAndConsume(ctx context.Context, userID int64, tokenID string, kind models.ActionKind) error
}

// UserService defines the interface for registration, profile and referral
// commission operations
type UserService interface {
	// GetUserData returns the user's current state
	GetUserData(ctx context.Context, userID int64) (*models.User, error)

	// Register idempotently creates the user; ref_by is write-once
	Register(ctx context.Context, userID int64, refBy *int64) (*models.RegisterResult, error)

	// Commission pays the referrer their cut of a referee's ad activity
	Commission(ctx context.Context, referrerID, refereeID int64) (*models.CommissionResult, error)

	// GenerateAction checks the user may act and issues an action token
	GenerateAction(ctx context.Context, userID int64, kind models.ActionKind) (string, error)
}

// AdService defines the interface for ad reward operations
type AdService interface {
	// WatchAd spends a token and credits the fixed ad reward
	WatchAd(ctx context.Context, userID int64, tokenID string) (*models.WatchAdResult, error)
}

// SpinService defines the interface for the two-step prize wheel
type SpinService interface {
	// RegisterSpin spends a token and arms a pending spin
	RegisterSpin(ctx context.Context, userID int64, tokenID string) (int, error)

	// SpinResult resolves the pending spin into a prize
	SpinResult(ctx context.Context, userID int64) (*models.SpinOutcome, error)
}

// WithdrawService defines the interface for payout requests
type WithdrawService interface {
	// Withdraw validates, spends a token, files the request and deducts
	Withdraw(ctx context.Context, userID int64, tokenID string, amount float64, binanceID string) (*models.WithdrawResult, error)
}
