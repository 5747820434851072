package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dogshouse/events"
	"dogshouse/games"
	"dogshouse/models"
	"dogshouse/repository"
	"dogshouse/repository/testutil"
	"dogshouse/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedOutcome struct {
	outcome int
}

func (f fixedOutcome) Draw(max int) int {
	return f.outcome
}

func TestSettlement_Integration_WinFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)

	settled := make(chan events.BetSettledEvent, 1)
	eventBus.Subscribe(events.EventTypeBetSettled, func(ctx context.Context, e events.Event) {
		settled <- e.(events.BetSettledEvent)
	})

	accountService := service.NewAccountService(uowFactory, 2, 5)
	settlementService := service.NewSettlementService(uowFactory, games.DefaultCatalog(), fixedOutcome{outcome: 6}, 1)

	_, err := accountService.CreateAccount(ctx, 1001, "alice", nil)
	require.NoError(t, err)

	// Balance 2, bet 1 on a variant winning on {6}, forced outcome 6:
	// balance becomes 2 - 1 + 2 = 3
	result, err := settlementService.PlaceBet(ctx, 1001, games.VariantDice, 1)
	require.NoError(t, err)

	assert.True(t, result.Won)
	assert.Equal(t, 6, result.Outcome)
	assert.Equal(t, int64(2), result.Payout)
	assert.Equal(t, int64(3), result.NewBalance)

	account, err := accountService.GetAccount(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, int64(3), account.Balance)
	assert.Equal(t, int64(1), account.GamesPlayed)
	assert.Equal(t, int64(1), account.TotalWins)
	assert.Equal(t, int64(0), account.TotalLosses)

	// The settled event arrives after commit
	select {
	case e := <-settled:
		assert.Equal(t, int64(1001), e.AccountID)
		assert.True(t, e.Won)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a bet settled event")
	}

	// The audit log chains: initial credit then the win
	entries, err := accountService.BalanceHistory(ctx, 1001, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.TransactionTypeBetWin, entries[0].TransactionType)
	assert.Equal(t, models.TransactionTypeInitial, entries[1].TransactionType)
	for _, e := range entries {
		assert.Equal(t, e.BalanceAfter, e.BalanceBefore+e.ChangeAmount)
	}
}

func TestSettlement_Integration_ConcurrentAllIn(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)

	accountService := service.NewAccountService(uowFactory, 100, 5)
	// Forced loss so the single winner depletes the balance entirely
	settlementService := service.NewSettlementService(uowFactory, games.DefaultCatalog(), fixedOutcome{outcome: 1}, 1)

	_, err := accountService.CreateAccount(ctx, 2001, "bob", nil)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := settlementService.PlaceBet(ctx, 2001, games.VariantDice, 100)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var invalidBet *service.InvalidBetError
		require.ErrorAs(t, err, &invalidBet)
		assert.Equal(t, service.InvalidBetExceedsBalance, invalidBet.Reason)
	}
	assert.Equal(t, 1, succeeded)

	account, err := accountService.GetAccount(ctx, 2001)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Balance)
	assert.Equal(t, int64(1), account.GamesPlayed)
}

func TestWithdrawal_Integration_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)

	tiers := []models.WithdrawalTier{{ID: "small", Cost: 15}}

	accountService := service.NewAccountService(uowFactory, 10, 5)
	settlementService := service.NewSettlementService(uowFactory, games.DefaultCatalog(), fixedOutcome{outcome: 6}, 1)
	withdrawalService := service.NewWithdrawalService(uowFactory, tiers, 5, true)

	_, err := accountService.CreateAccount(ctx, 3001, "carol", nil)
	require.NoError(t, err)

	// Accumulate five wins: balance 10 + 5*2 = 20, totalWins 5
	for i := 0; i < 5; i++ {
		_, err := settlementService.PlaceBet(ctx, 3001, games.VariantDice, 2)
		require.NoError(t, err)
	}

	account, err := accountService.GetAccount(ctx, 3001)
	require.NoError(t, err)
	require.Equal(t, int64(20), account.Balance)
	require.Equal(t, int64(5), account.TotalWins)

	// Submission debits the tier cost immediately
	request, err := withdrawalService.Submit(ctx, 3001, "small", "wallet-abc")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusPending, request.Status)

	account, err = accountService.GetAccount(ctx, 3001)
	require.NoError(t, err)
	assert.Equal(t, int64(5), account.Balance)

	pending, err := withdrawalService.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// Approval resets the win counter and resolves the request
	require.NoError(t, withdrawalService.Approve(ctx, request.ID))

	account, err = accountService.GetAccount(ctx, 3001)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.TotalWins)

	pending, err = withdrawalService.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// A second approval loses to the already-resolved state
	err = withdrawalService.Approve(ctx, request.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyResolved)
}

func TestWithdrawal_Integration_RejectRefunds(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)

	tiers := []models.WithdrawalTier{{ID: "small", Cost: 15}}

	accountService := service.NewAccountService(uowFactory, 10, 5)
	settlementService := service.NewSettlementService(uowFactory, games.DefaultCatalog(), fixedOutcome{outcome: 6}, 1)
	withdrawalService := service.NewWithdrawalService(uowFactory, tiers, 5, true)

	_, err := accountService.CreateAccount(ctx, 4001, "dave", nil)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := settlementService.PlaceBet(ctx, 4001, games.VariantDice, 2)
		require.NoError(t, err)
	}

	request, err := withdrawalService.Submit(ctx, 4001, "small", "wallet-abc")
	require.NoError(t, err)

	require.NoError(t, withdrawalService.Reject(ctx, request.ID, "payload unverifiable"))

	// The reserved cost flows back and the win counter is untouched
	account, err := accountService.GetAccount(ctx, 4001)
	require.NoError(t, err)
	assert.Equal(t, int64(20), account.Balance)
	assert.Equal(t, int64(5), account.TotalWins)
}
