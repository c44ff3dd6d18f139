package service

import (
	"time"

	"adwheel/config"
	"adwheel/events"
)

func testConfig() *config.Config {
	return &config.Config{
		AdReward:       3,
		AdDailyCap:     100,
		SpinDailyCap:   15,
		CommissionRate: 0.05,
		MinWithdrawal:  400,
		TokenTTL:       60 * time.Second,
		ActionCooldown: 3 * time.Second,
		Environment:    "test",
	}
}

func newTestBus() *events.Bus {
	return events.NewBus()
}

func int64Ptr(v int64) *int64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }
