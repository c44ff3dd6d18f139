package models

import "time"

// WithdrawalStatusPending is the only status this service ever writes; later
// transitions belong to the payout operator.
const WithdrawalStatusPending = "Pending"

// Withdrawal is a payout request row. Never mutated after creation here.
type Withdrawal struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Amount    float64   `db:"amount"`
	BinanceID string    `db:"binance_id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// WithdrawResult reports a successfully filed withdrawal (returned to the user)
type WithdrawResult struct {
	NewBalance float64
	Status     string
}
