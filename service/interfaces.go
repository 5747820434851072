package service

import (
	"context"

	"dogshouse/events"
	"dogshouse/games"
	"dogshouse/models"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByID retrieves an account by id, nil when absent
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// GetByIDForUpdate retrieves an account and takes a row lock for the
	// duration of the surrounding transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Account, error)

	// Create creates a new account with the initial balance
	Create(ctx context.Context, id int64, username string, referredBy *int64, initialBalance int64) (*models.Account, error)

	// ApplyDelta atomically applies a balance delta and returns the new
	// balance, failing if the result would be negative
	ApplyDelta(ctx context.Context, id int64, delta int64) (int64, error)

	// ApplySettlement applies the net settlement delta and bumps the game
	// counters in a single atomic update, returning the new balance
	ApplySettlement(ctx context.Context, id int64, delta int64, won bool) (int64, error)

	// ResetTotalWins zeroes the win counter after an approved withdrawal
	ResetTotalWins(ctx context.Context, id int64) error

	// SetBlocked flips the blocked flag
	SetBlocked(ctx context.Context, id int64, blocked bool) error

	// AllIDs returns every account id, oldest account first
	AllIDs(ctx context.Context) ([]int64, error)

	// CountAccounts returns total and blocked account counts
	CountAccounts(ctx context.Context) (total int64, blocked int64, err error)
}

// BalanceEntryRepository defines the interface for the balance audit log
type BalanceEntryRepository interface {
	// Record creates a new balance entry
	Record(ctx context.Context, entry *models.BalanceEntry) error

	// GetByAccount returns recent balance entries for an account
	GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.BalanceEntry, error)
}

// SettlementRepository defines the interface for the settlement log
type SettlementRepository interface {
	// Create appends a settlement record
	Create(ctx context.Context, record *models.SettlementRecord) error

	// GetByAccount returns recent settlements for an account
	GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.SettlementRecord, error)

	// GetRecent returns the most recent settlements across all accounts
	GetRecent(ctx context.Context, limit int) ([]*models.SettlementRecord, error)

	// Count returns the total number of settlements
	Count(ctx context.Context) (int64, error)
}

// WithdrawalRepository defines the interface for withdrawal request data access
type WithdrawalRepository interface {
	// Create appends a new pending request
	Create(ctx context.Context, request *models.WithdrawalRequest) error

	// GetByID retrieves a request by id, nil when absent
	GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error)

	// ListPending returns pending requests, oldest first
	ListPending(ctx context.Context) ([]*models.WithdrawalRequest, error)

	// Resolve transitions a request from pending to the given status with a
	// compare-and-set on status; returns false if the request was not pending
	Resolve(ctx context.Context, id uuid.UUID, status models.WithdrawalStatus, rejectReason *string) (bool, error)
}

// AccountService defines the interface for account operations
type AccountService interface {
	// CreateAccount creates a new account, crediting the referrer when the
	// referral resolves to an existing account
	CreateAccount(ctx context.Context, id int64, username string, referredBy *int64) (*models.Account, error)

	// GetAccount retrieves an account by id, nil when absent
	GetAccount(ctx context.Context, id int64) (*models.Account, error)

	// GetStats returns the stats read model for an account
	GetStats(ctx context.Context, id int64) (*models.AccountStats, error)

	// BalanceHistory returns recent balance entries for an account,
	// newest first
	BalanceHistory(ctx context.Context, id int64, limit int) ([]*models.BalanceEntry, error)
}

// SettlementService defines the interface for wager settlement
type SettlementService interface {
	// PlaceBet settles one wager end-to-end: validates funds, draws an
	// outcome, applies the catalog rules and commits the balance delta
	PlaceBet(ctx context.Context, accountID int64, variant games.Variant, amount int64) (*models.BetResult, error)

	// RecentSettlements returns the most recent settlement records
	RecentSettlements(ctx context.Context, limit int) ([]*models.SettlementRecord, error)

	// AccountSettlements returns recent settlements for one account
	AccountSettlements(ctx context.Context, accountID int64, limit int) ([]*models.SettlementRecord, error)
}

// WithdrawalService defines the interface for the withdrawal gate and queue
type WithdrawalService interface {
	// Submit checks eligibility, debits the tier cost and enqueues a
	// pending request
	Submit(ctx context.Context, accountID int64, tierID string, payload string) (*models.WithdrawalRequest, error)

	// Approve transitions a pending request to approved and resets the
	// account's win counter
	Approve(ctx context.Context, requestID uuid.UUID) error

	// Reject transitions a pending request to rejected
	Reject(ctx context.Context, requestID uuid.UUID, reason string) error

	// ListPending returns pending requests, oldest first
	ListPending(ctx context.Context) ([]*models.WithdrawalRequest, error)

	// Tiers returns the configured reward tiers
	Tiers() []models.WithdrawalTier
}

// AdminService defines the interface for privileged ledger operations
type AdminService interface {
	// AdjustBalance applies a direct balance delta, exempt from the
	// blocked-account check
	AdjustBalance(ctx context.Context, accountID int64, delta int64, reason string) (int64, error)

	// SetBlocked flips an account's blocked flag
	SetBlocked(ctx context.Context, accountID int64, blocked bool) error

	// AccountIDs returns every account id for broadcast fan-out
	AccountIDs(ctx context.Context) ([]int64, error)

	// Overview returns population-wide counts for the admin panel
	Overview(ctx context.Context) (*models.AdminOverview, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	BalanceEntryRepository() BalanceEntryRepository
	SettlementRepository() SettlementRepository
	WithdrawalRepository() WithdrawalRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
