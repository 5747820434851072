package service

import (
	"context"
	"fmt"

	"dogshouse/events"
	"dogshouse/games"
	"dogshouse/models"
)

type settlementService struct {
	uowFactory UnitOfWorkFactory
	catalog    *games.Catalog
	outcomes   games.OutcomeSource
	minBet     int64
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory, catalog *games.Catalog, outcomes games.OutcomeSource, minBet int64) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		catalog:    catalog,
		outcomes:   outcomes,
		minBet:     minBet,
	}
}

// PlaceBet settles exactly one wager. The account row is locked for the
// duration of the transaction, so concurrent settlements against the same
// account serialize and the balance can never transiently go negative.
// The bet is always debited; a win credits bet * multiplier on top, so a
// win nets +bet*(multiplier-1) and a loss nets -bet, applied as a single
// update together with the game counters.
func (s *settlementService) PlaceBet(ctx context.Context, accountID int64, variant games.Variant, amount int64) (*models.BetResult, error) {
	game, err := s.catalog.Get(variant)
	if err != nil {
		return nil, &InvalidBetError{Reason: InvalidBetUnknownVariant, Variant: string(variant), Amount: amount}
	}
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}
	if account.IsBlocked {
		return nil, ErrAccountBlocked
	}
	if amount < s.minBet {
		return nil, &InvalidBetError{Reason: InvalidBetBelowMinimum, Variant: string(variant), Amount: amount, MinBet: s.minBet}
	}
	if account.Balance < amount {
		return nil, &InvalidBetError{Reason: InvalidBetExceedsBalance, Variant: string(variant), Amount: amount, MinBet: s.minBet, Balance: account.Balance}
	}

	// The draw is pure in-memory randomness with no I/O, so running it
	// under the row lock adds nothing to the hold time, and bets rejected
	// above never consume a draw.
	outcome := s.outcomes.Draw(game.OutcomeMax)
	won := game.IsWinning(outcome)

	var payout int64
	var delta int64
	var transactionType models.TransactionType
	if won {
		payout = amount * game.PayoutMultiplier
		delta = payout - amount
		transactionType = models.TransactionTypeBetWin
	} else {
		delta = -amount
		transactionType = models.TransactionTypeBetLoss
	}

	newBalance, err := uow.AccountRepository().ApplySettlement(ctx, accountID, delta, won)
	if err != nil {
		return nil, fmt.Errorf("failed to apply settlement: %w", err)
	}

	entry := &models.BalanceEntry{
		AccountID:       accountID,
		BalanceBefore:   account.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    delta,
		TransactionType: transactionType,
		Metadata: map[string]any{
			"variant":    string(variant),
			"bet_amount": amount,
			"outcome":    outcome,
			"won":        won,
		},
	}
	if err := RecordBalanceChange(ctx, uow, entry); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	record := &models.SettlementRecord{
		AccountID:      accountID,
		Variant:        string(variant),
		BetAmount:      amount,
		Outcome:        outcome,
		Won:            won,
		Payout:         payout,
		BalanceEntryID: &entry.ID,
	}
	if err := uow.SettlementRepository().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create settlement record: %w", err)
	}

	uow.EventBus().Publish(events.BetSettledEvent{
		AccountID:    accountID,
		SettlementID: record.ID,
		Variant:      string(variant),
		Amount:       amount,
		Outcome:      outcome,
		Won:          won,
		Payout:       payout,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.BetResult{
		Won:        won,
		Variant:    string(variant),
		BetAmount:  amount,
		Outcome:    outcome,
		Payout:     payout,
		NewBalance: newBalance,
	}, nil
}

// RecentSettlements returns the most recent settlement records
func (s *settlementService) RecentSettlements(ctx context.Context, limit int) ([]*models.SettlementRecord, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	records, err := uow.SettlementRepository().GetRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent settlements: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return records, nil
}

// AccountSettlements returns recent settlements for one account
func (s *settlementService) AccountSettlements(ctx context.Context, accountID int64, limit int) ([]*models.SettlementRecord, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}

	records, err := uow.SettlementRepository().GetByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get account settlements: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return records, nil
}
