package models

import "time"

// ActionKind identifies which gated operation an action token authorizes.
type ActionKind string

const (
	ActionWatchAd  ActionKind = "watchAd"
	ActionSpin     ActionKind = "spin"
	ActionWithdraw ActionKind = "withdraw"
)

// ParseActionKind validates a client-supplied action kind.
func ParseActionKind(s string) (ActionKind, bool) {
	switch ActionKind(s) {
	case ActionWatchAd, ActionSpin, ActionWithdraw:
		return ActionKind(s), true
	}
	return "", false
}

// ActionToken is a single-use, time-boxed credential for one gated action.
// Consumption is deletion; there is no consumed state in the table.
type ActionToken struct {
	ID        string     `db:"id"`
	UserID    int64      `db:"user_id"`
	Kind      ActionKind `db:"action_type"`
	CreatedAt time.Time  `db:"created_at"`
}
