package testutil

import (
	"time"

	"adwheel/models"
)

// CreateTestToken creates an action token with default values
func CreateTestToken(id string, userID int64, kind models.ActionKind) *models.ActionToken {
	return &models.ActionToken{
		ID:        id,
		UserID:    userID,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}

// CreateTestWithdrawal creates a pending withdrawal with default values
func CreateTestWithdrawal(userID int64, amount float64) *models.Withdrawal {
	return &models.Withdrawal{
		UserID:    userID,
		Amount:    amount,
		BinanceID: "binance-test",
		Status:    models.WithdrawalStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}
