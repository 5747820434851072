package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dogshouse/api"
	"dogshouse/config"
	"dogshouse/database"
	"dogshouse/events"
	"dogshouse/games"
	"dogshouse/repository"
	"dogshouse/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting dogshouse ledger...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL, database.PoolConfig{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBConnMaxLifetime,
		MaxConnIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Info("Initializing services...")
	accountService := service.NewAccountService(uowFactory, cfg.StartingBalance, cfg.ReferralReward)
	settlementService := service.NewSettlementService(uowFactory, games.DefaultCatalog(), games.NewRandSource(), cfg.MinBet)
	withdrawalService := service.NewWithdrawalService(uowFactory, cfg.WithdrawalTiers, cfg.MinWinsForWithdrawal, cfg.WithdrawalRefundOnReject)
	adminService := service.NewAdminService(uowFactory)
	log.Info("Services initialized successfully")

	// Initialize HTTP server
	server := api.NewServer(cfg.ListenAddr, api.Services{
		Accounts:    accountService,
		Settlement:  settlementService,
		Withdrawals: withdrawalService,
		Admin:       adminService,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":        cfg.ListenAddr,
			"environment": cfg.Environment,
		}).Info("Ledger API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for context cancellation or a server failure
	select {
	case err := <-serverErr:
		db.Close()
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown failed")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}
