package repository

import (
	"context"
	"testing"

	"dogshouse/models"
	"dogshouse/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithdrawalRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewWithdrawalRepository(testDB.DB)
	ctx := context.Background()

	_, err := accountRepo.Create(ctx, 1001, "alice", nil, 100)
	require.NoError(t, err)

	request := testutil.CreateTestWithdrawalRequest(1001, "small", 15)
	err = repo.Create(ctx, request)
	require.NoError(t, err)
	assert.False(t, request.CreatedAt.IsZero())

	fetched, err := repo.GetByID(ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, int64(1001), fetched.AccountID)
	assert.Equal(t, "small", fetched.TierID)
	assert.Equal(t, int64(15), fetched.Cost)
	assert.Equal(t, "test-payload", fetched.Payload)
	assert.Equal(t, models.WithdrawalStatusPending, fetched.Status)
	assert.Nil(t, fetched.RejectReason)
	assert.Nil(t, fetched.ResolvedAt)
}

func TestWithdrawalRepository_GetByID_NotFound(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWithdrawalRepository(testDB.DB)
	ctx := context.Background()

	request, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, request)
}

func TestWithdrawalRepository_ListPending(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewWithdrawalRepository(testDB.DB)
	ctx := context.Background()

	_, err := accountRepo.Create(ctx, 2001, "bob", nil, 1000)
	require.NoError(t, err)

	first := testutil.CreateTestWithdrawalRequest(2001, "small", 15)
	second := testutil.CreateTestWithdrawalRequest(2001, "large", 100)
	resolved := testutil.CreateTestWithdrawalRequest(2001, "small", 15)

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, resolved))

	ok, err := repo.Resolve(ctx, resolved.ID, models.WithdrawalStatusApproved, nil)
	require.NoError(t, err)
	require.True(t, ok)

	pending, err := repo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	// Oldest first
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)
}

func TestWithdrawalRepository_Resolve(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewWithdrawalRepository(testDB.DB)
	ctx := context.Background()

	_, err := accountRepo.Create(ctx, 3001, "carol", nil, 1000)
	require.NoError(t, err)

	t.Run("approve", func(t *testing.T) {
		request := testutil.CreateTestWithdrawalRequest(3001, "small", 15)
		require.NoError(t, repo.Create(ctx, request))

		ok, err := repo.Resolve(ctx, request.ID, models.WithdrawalStatusApproved, nil)
		require.NoError(t, err)
		assert.True(t, ok)

		fetched, err := repo.GetByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, models.WithdrawalStatusApproved, fetched.Status)
		assert.NotNil(t, fetched.ResolvedAt)
		assert.Nil(t, fetched.RejectReason)
	})

	t.Run("reject with reason", func(t *testing.T) {
		request := testutil.CreateTestWithdrawalRequest(3001, "small", 15)
		require.NoError(t, repo.Create(ctx, request))

		reason := "payload unverifiable"
		ok, err := repo.Resolve(ctx, request.ID, models.WithdrawalStatusRejected, &reason)
		require.NoError(t, err)
		assert.True(t, ok)

		fetched, err := repo.GetByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, models.WithdrawalStatusRejected, fetched.Status)
		require.NotNil(t, fetched.RejectReason)
		assert.Equal(t, reason, *fetched.RejectReason)
	})

	t.Run("second resolve loses the compare-and-set", func(t *testing.T) {
		request := testutil.CreateTestWithdrawalRequest(3001, "small", 15)
		require.NoError(t, repo.Create(ctx, request))

		ok, err := repo.Resolve(ctx, request.ID, models.WithdrawalStatusApproved, nil)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = repo.Resolve(ctx, request.ID, models.WithdrawalStatusRejected, nil)
		require.NoError(t, err)
		assert.False(t, ok)

		// The first resolution stands
		fetched, err := repo.GetByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, models.WithdrawalStatusApproved, fetched.Status)
	})

	t.Run("missing request", func(t *testing.T) {
		ok, err := repo.Resolve(ctx, uuid.New(), models.WithdrawalStatusApproved, nil)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
