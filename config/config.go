package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"dogshouse/models"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL       string
	DBMaxConns        int32
	DBMinConns        int32
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	// HTTP boundary
	ListenAddr string

	// Ledger configuration
	StartingBalance      int64
	MinBet               int64
	ReferralReward       int64
	MinWinsForWithdrawal int64
	WithdrawalTiers      []models.WithdrawalTier
	// Whether rejecting a withdrawal returns the reserved tier cost
	WithdrawalRefundOnReject bool

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ListenAddr:  os.Getenv("LISTEN_ADDR"),

		// Pool settings with defaults
		DBMaxConns:        10,
		DBMinConns:        2,
		DBConnMaxLifetime: time.Hour,
		DBConnMaxIdleTime: 30 * time.Minute,

		// Ledger settings with defaults
		StartingBalance:          10,
		MinBet:                   10,
		ReferralReward:           5,
		MinWinsForWithdrawal:     5,
		WithdrawalRefundOnReject: true,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}

	// Override defaults if environment variables are set
	if maxConns := os.Getenv("DB_MAX_CONNS"); maxConns != "" {
		if parsed, err := strconv.ParseInt(maxConns, 10, 32); err == nil {
			config.DBMaxConns = int32(parsed)
		}
	}
	if minConns := os.Getenv("DB_MIN_CONNS"); minConns != "" {
		if parsed, err := strconv.ParseInt(minConns, 10, 32); err == nil {
			config.DBMinConns = int32(parsed)
		}
	}
	if lifetime := os.Getenv("DB_CONN_MAX_LIFETIME"); lifetime != "" {
		if parsed, err := time.ParseDuration(lifetime); err == nil {
			config.DBConnMaxLifetime = parsed
		}
	}
	if idle := os.Getenv("DB_CONN_MAX_IDLE_TIME"); idle != "" {
		if parsed, err := time.ParseDuration(idle); err == nil {
			config.DBConnMaxIdleTime = parsed
		}
	}
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsed
		}
	}
	if minBet := os.Getenv("MIN_BET"); minBet != "" {
		if parsed, err := strconv.ParseInt(minBet, 10, 64); err == nil {
			config.MinBet = parsed
		}
	}
	if reward := os.Getenv("REFERRAL_REWARD"); reward != "" {
		if parsed, err := strconv.ParseInt(reward, 10, 64); err == nil {
			config.ReferralReward = parsed
		}
	}
	if minWins := os.Getenv("MIN_WINS_FOR_WITHDRAWAL"); minWins != "" {
		if parsed, err := strconv.ParseInt(minWins, 10, 64); err == nil {
			config.MinWinsForWithdrawal = parsed
		}
	}
	if refund := os.Getenv("WITHDRAWAL_REFUND_ON_REJECT"); refund != "" {
		config.WithdrawalRefundOnReject = refund == "true"
	}

	// Parse withdrawal tiers, e.g. "dogs100:100,dogs250:250"
	if tiers := os.Getenv("WITHDRAWAL_TIERS"); tiers != "" {
		parsed, err := ParseTiers(tiers)
		if err != nil {
			return nil, err
		}
		config.WithdrawalTiers = parsed
	} else {
		config.WithdrawalTiers = DefaultTiers()
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

// DefaultTiers returns the stock withdrawal reward tiers
func DefaultTiers() []models.WithdrawalTier {
	return []models.WithdrawalTier{
		{ID: "dogs100", Cost: 100},
		{ID: "dogs250", Cost: 250},
		{ID: "dogs500", Cost: 500},
	}
}

// ParseTiers parses a comma-separated id:cost tier list
func ParseTiers(s string) ([]models.WithdrawalTier, error) {
	var tiers []models.WithdrawalTier
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, costStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid withdrawal tier %q, expected id:cost", part)
		}
		cost, err := strconv.ParseInt(costStr, 10, 64)
		if err != nil || cost <= 0 {
			return nil, fmt.Errorf("invalid withdrawal tier cost in %q", part)
		}
		tiers = append(tiers, models.WithdrawalTier{ID: strings.TrimSpace(id), Cost: cost})
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("no withdrawal tiers configured")
	}
	return tiers, nil
}
