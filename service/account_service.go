package service

import (
	"context"
	"fmt"

	"dogshouse/events"
	"dogshouse/models"
)

type accountService struct {
	uowFactory      UnitOfWorkFactory
	startingBalance int64
	referralReward  int64
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory, startingBalance, referralReward int64) AccountService {
	return &accountService{
		uowFactory:      uowFactory,
		startingBalance: startingBalance,
		referralReward:  referralReward,
	}
}

// CreateAccount creates a new account with the starting balance. When the
// referral resolves to an existing account, the referrer is credited in
// the same transaction, so a reader never observes the new account
// without the referrer's credit or vice versa.
func (s *accountService) CreateAccount(ctx context.Context, id int64, username string, referredBy *int64) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	existing, err := uow.AccountRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	// A referral only counts when the referrer already exists; a dangling
	// or self-referencing code silently grants nothing
	var referrer *models.Account
	if referredBy != nil && *referredBy != id {
		referrer, err = uow.AccountRepository().GetByIDForUpdate(ctx, *referredBy)
		if err != nil {
			return nil, fmt.Errorf("failed to look up referrer %d: %w", *referredBy, err)
		}
	}

	var storedReferredBy *int64
	if referrer != nil {
		storedReferredBy = referredBy
	}

	account, err := uow.AccountRepository().Create(ctx, id, username, storedReferredBy, s.startingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	initial := &models.BalanceEntry{
		AccountID:       id,
		BalanceBefore:   0,
		BalanceAfter:    s.startingBalance,
		ChangeAmount:    s.startingBalance,
		TransactionType: models.TransactionTypeInitial,
		Metadata: map[string]any{
			"username": username,
		},
	}
	if err := RecordBalanceChange(ctx, uow, initial); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	if referrer != nil {
		newReferrerBalance, err := uow.AccountRepository().ApplyDelta(ctx, referrer.ID, s.referralReward)
		if err != nil {
			return nil, fmt.Errorf("failed to credit referrer %d: %w", referrer.ID, err)
		}

		reward := &models.BalanceEntry{
			AccountID:       referrer.ID,
			BalanceBefore:   referrer.Balance,
			BalanceAfter:    newReferrerBalance,
			ChangeAmount:    s.referralReward,
			TransactionType: models.TransactionTypeReferralReward,
			Metadata: map[string]any{
				"referred_account_id": id,
			},
		}
		if err := RecordBalanceChange(ctx, uow, reward); err != nil {
			return nil, fmt.Errorf("failed to record referral reward: %w", err)
		}
	}

	uow.EventBus().Publish(events.AccountCreatedEvent{
		AccountID:      id,
		Username:       username,
		ReferredBy:     storedReferredBy,
		InitialBalance: s.startingBalance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

// GetAccount retrieves an account by id, nil when absent
func (s *accountService) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

// GetStats returns the stats read model for an account
func (s *accountService) GetStats(ctx context.Context, id int64) (*models.AccountStats, error) {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNotFound
	}
	return account.Stats(), nil
}

// BalanceHistory returns recent balance entries for an account, newest first
func (s *accountService) BalanceHistory(ctx context.Context, id int64, limit int) ([]*models.BalanceEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}

	entries, err := uow.BalanceEntryRepository().GetByAccount(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance entries: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entries, nil
}
