package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration. It is built once at process
// start and passed by reference into each component; nothing reads the
// environment after Load returns.
type Config struct {
	// HTTP configuration
	ListenAddr string

	// Database configuration
	DatabaseURL string

	// Mini-app authenticity secret. Empty is allowed: the verifier then
	// fails closed and every signed request is rejected.
	BotToken string

	// Reward settings
	AdReward       float64 // credited per watched ad
	AdDailyCap     int     // max rewarded ads per user per day
	SpinDailyCap   int     // max wheel spins per user per day
	CommissionRate float64 // referrer cut of the referee's ad reward
	MinWithdrawal  float64 // smallest payout amount accepted

	// Anti-fraud settings
	TokenTTL       time.Duration // action token lifetime
	ActionCooldown time.Duration // minimum gap between gated actions per user

	// Environment
	Environment string // "development", "production" or "test"
}

// Load builds configuration from environment variables.
func Load() (*Config, error) {
	config := &Config{
		ListenAddr:  os.Getenv("LISTEN_ADDR"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		BotToken:    os.Getenv("BOT_TOKEN"),

		// Reward settings with defaults
		AdReward:       3,
		AdDailyCap:     100,
		SpinDailyCap:   15,
		CommissionRate: 0.05,
		MinWithdrawal:  400,

		TokenTTL:       60 * time.Second,
		ActionCooldown: 3 * time.Second,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}

	// Override defaults if environment variables are set
	if reward := os.Getenv("AD_REWARD"); reward != "" {
		if parsed, err := strconv.ParseFloat(reward, 64); err == nil {
			config.AdReward = parsed
		}
	}
	if cap := os.Getenv("AD_DAILY_CAP"); cap != "" {
		if parsed, err := strconv.Atoi(cap); err == nil {
			config.AdDailyCap = parsed
		}
	}
	if cap := os.Getenv("SPIN_DAILY_CAP"); cap != "" {
		if parsed, err := strconv.Atoi(cap); err == nil {
			config.SpinDailyCap = parsed
		}
	}
	if min := os.Getenv("MIN_WITHDRAWAL"); min != "" {
		if parsed, err := strconv.ParseFloat(min, 64); err == nil {
			config.MinWithdrawal = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
