package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"adwheel/api"
	"adwheel/auth"
	"adwheel/config"
	"adwheel/database"
	"adwheel/events"
	"adwheel/repository"
	"adwheel/service"
	"adwheel/store"

	"github.com/roylee0704/gron"
	"github.com/roylee0704/gron/xtime"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting adwheel server...")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus with logging subscribers
	eventBus := events.NewBus()
	events.LogSubscriber(eventBus)

	// Initialize repositories over the filtered store client
	storeClient := store.New(db)
	userRepo := repository.NewUserRepository(storeClient)
	tokenRepo := repository.NewTokenRepository(storeClient)
	withdrawalRepo := repository.NewWithdrawalRepository(storeClient)
	commissionLedger := repository.NewCommissionLedger(storeClient)

	// Initialize services
	log.Println("Initializing services...")
	tokenService := service.NewTokenService(tokenRepo, cfg.TokenTTL)
	userService := service.NewUserService(userRepo, commissionLedger, tokenService, eventBus, cfg)
	adService := service.NewAdService(userRepo, tokenService, eventBus, cfg)
	spinService := service.NewSpinService(userRepo, tokenService, eventBus, cfg)
	withdrawService := service.NewWithdrawService(userRepo, tokenService, withdrawalRepo, eventBus, cfg)
	log.Println("Services initialized successfully")

	// Background jobs: expired-token sweep and the daily counter reset
	cron := gron.New()
	cron.AddFunc(gron.Every(1*time.Minute), func() {
		swept, err := tokenRepo.DeleteCreatedBefore(context.Background(), time.Now().Add(-cfg.TokenTTL))
		if err != nil {
			log.Printf("Token sweep error: %v", err)
			return
		}
		if swept > 0 {
			log.Printf("Swept %d expired action tokens", swept)
		}
	})
	cron.AddFunc(gron.Every(1*xtime.Day).At("00:00"), func() {
		reset, err := userRepo.ResetDailyCounters(context.Background())
		if err != nil {
			log.Printf("Daily counter reset error: %v", err)
			return
		}
		log.Printf("Reset daily counters for %d users", reset)
	})
	cron.Start()

	// Initialize HTTP server
	handler := api.NewHandler(auth.NewVerifier(cfg.BotToken), userService, adService, spinService, withdrawService)
	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.NewRouter(handler, db),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server is listening on %s in %s mode...", cfg.ListenAddr, cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		cron.Stop()
		db.Close()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Println("Shutting down server...")
	cron.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
