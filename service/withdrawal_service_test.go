package service

import (
	"context"
	"testing"

	"dogshouse/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testTiers = []models.WithdrawalTier{
	{ID: "small", Cost: 15},
	{ID: "large", Cost: 100},
}

func setupWithdrawalServiceMocks() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockAccountRepository, *MockBalanceEntryRepository, *MockWithdrawalRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockEntryRepo := new(MockBalanceEntryRepository)
	mockWithdrawalRepo := new(MockWithdrawalRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockEntryRepo, new(MockSettlementRepository), mockWithdrawalRepo)

	return mockUoW, mockFactory, mockAccountRepo, mockEntryRepo, mockWithdrawalRepo
}

func TestWithdrawalService_Submit(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockAccountRepo, mockEntryRepo, mockWithdrawalRepo := setupWithdrawalServiceMocks()
	service := NewWithdrawalService(mockFactory, testTiers, 5, true)

	account := &models.Account{ID: 123456, Username: "testuser", Balance: 20, TotalWins: 5}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByIDForUpdate", ctx, int64(123456)).Return(account, nil)
	mockAccountRepo.On("ApplyDelta", ctx, int64(123456), int64(-15)).Return(int64(5), nil)

	mockEntryRepo.On("Record", ctx, mock.MatchedBy(func(e *models.BalanceEntry) bool {
		return e.AccountID == 123456 &&
			e.BalanceBefore == 20 &&
			e.BalanceAfter == 5 &&
			e.ChangeAmount == -15 &&
			e.TransactionType == models.TransactionTypeWithdrawalReserve
	})).Return(nil)

	mockWithdrawalRepo.On("Create", ctx, mock.MatchedBy(func(r *models.WithdrawalRequest) bool {
		return r.AccountID == 123456 &&
			r.TierID == "small" &&
			r.Cost == 15 &&
			r.Payload == "wallet-abc" &&
			r.Status == models.WithdrawalStatusPending &&
			r.ID != uuid.Nil
	})).Return(nil)

	request, err := service.Submit(ctx, 123456, "small", "wallet-abc")

	assert.NoError(t, err)
	assert.NotNil(t, request)
	assert.Equal(t, models.WithdrawalStatusPending, request.Status)
	assert.Equal(t, int64(15), request.Cost)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockEntryRepo.AssertExpectations(t)
	mockWithdrawalRepo.AssertExpectations(t)
}

func TestWithdrawalService_Submit_InsufficientWins(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockAccountRepo, _, _ := setupWithdrawalServiceMocks()
	service := NewWithdrawalService(mockFactory, testTiers, 5, true)

	account := &models.Account{ID: 123456, Username: "testuser", Balance: 1000, TotalWins: 4}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByIDForUpdate", ctx, int64(123456)).Return(account, nil)

	request, err := service.Submit(ctx, 123456, "small", "wallet-abc")

	assert.Nil(t, request)
	var notEligible *NotEligibleError
	assert.ErrorAs(t, err, &notEligible)
	assert.Equal(t, NotEligibleWinCount, notEligible.Reason)
	assert.Equal(t, int64(1), notEligible.Shortfall())

	mockAccountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
}

func TestWithdrawalService_Submit_InsufficientBalance(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockAccountRepo, _, _ := setupWithdrawalServiceMocks()
	service := NewWithdrawalService(mockFactory, testTiers, 5, true)

	account := &models.Account{ID: 123456, Username: "testuser", Balance: 40, TotalWins: 9}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByIDForUpdate", ctx, int64(123456)).Return(account, nil)

	request, err := service.Submit(ctx, 123456, "large", "wallet-abc")

	assert.Nil(t, request)
	var notEligible *NotEligibleError
	assert.ErrorAs(t, err, &notEligible)
	assert.Equal(t, NotEligibleBalance, notEligible.Reason)
	assert.Equal(t, int64(60), notEligible.Shortfall())
}

func TestWithdrawalService_Submit_UnknownTier(t *testing.T) {
	ctx := context.Background()

	_, mockFactory, _, _, _ := setupWithdrawalServiceMocks()
	service := NewWithdrawalService(mockFactory, testTiers, 5, true)

	request, err := service.Submit(ctx, 123456, "nonexistent", "wallet-abc")

	assert.Nil(t, request)
	assert.ErrorIs(t, err, ErrUnknownTier)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestWithdrawalService_Approve(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockAccountRepo, _, mockWithdrawalRepo := setupWithdrawalServiceMocks()
	service := NewWithdrawalService(mockFactory, testTiers, 5, true)

	requestID := uuid.New()
	pending := &models.WithdrawalRequest{
		ID:        requestID,
		AccountID: 123456,
		TierID:    "small",
		Cost:      15,
		Status:    models.WithdrawalStatusPending,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWithdrawalRepo.On("GetByID", ctx, requestID).Return(pending, nil)
	mockWithdrawalRepo.On("Resolve", ctx, requestID, models.WithdrawalStatusApproved, (*string)(nil)).Return(true, nil)
	mockAccountRepo.On("ResetTotalWins", ctx, int64(123456)).Return(nil)

	err := service.Approve(ctx, requestID)

	assert.NoError(t, err)
	mockWithdrawalRepo.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
}

func TestWithdrawalService_Approve_AlreadyResolved(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockAccountRepo, _, mockWithdrawalRepo := setupWithdrawalServiceMocks()
	service := NewWithdrawalService(mockFactory, testTiers, 5, true)

	requestID := uuid.New()
	approved := &models.WithdrawalRequest{
		ID:        requestID,
		AccountID: 123456,
		Status:    models.WithdrawalStatusApproved,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWithdrawalRepo.On("GetByID", ctx, requestID).Return(approved, nil)

	err := service.Approve(ctx, requestID)

	assert.ErrorIs(t, err, ErrAlreadyResolved)
	mockAccountRepo.AssertNotCalled(t, "ResetTotalWins", mock.Anything, mock.Anything)
}

func TestWithdrawalService_Approve_LostRace(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockAccountRepo, _, mockWithdrawalRepo := setupWithdrawalServiceMocks()
	service := NewWithdrawalService(mockFactory, testTiers, 5, true)

	requestID := uuid.New()
	pending := &models.WithdrawalRequest{
		ID:        requestID,
		AccountID: 123456,
		Status:    models.WithdrawalStatusPending,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWithdrawalRepo.On("GetByID", ctx, requestID).Return(pending, nil)
	// Another resolver won the compare-and-set between the read and the update
	mockWithdrawalRepo.On("Resolve", ctx, requestID, models.WithdrawalStatusApproved, (*string)(nil)).Return(false, nil)

	err := service.Approve(ctx, requestID)

	assert.ErrorIs(t, err, ErrAlreadyResolved)
	mockAccountRepo.AssertNotCalled(t, "ResetTotalWins", mock.Anything, mock.Anything)
}

func TestWithdrawalService_Reject_WithRefund(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockAccountRepo, mockEntryRepo, mockWithdrawalRepo := setupWithdrawalServiceMocks()
	service := NewWithdrawalService(mockFactory, testTiers, 5, true)

	requestID := uuid.New()
	pending := &models.WithdrawalRequest{
		ID:        requestID,
		AccountID: 123456,
		TierID:    "small",
		Cost:      15,
		Status:    models.WithdrawalStatusPending,
	}
	account := &models.Account{ID: 123456, Username: "testuser", Balance: 5}
	reason := "payload unverifiable"

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWithdrawalRepo.On("GetByID", ctx, requestID).Return(pending, nil)
	mockWithdrawalRepo.On("Resolve", ctx, requestID, models.WithdrawalStatusRejected, &reason).Return(true, nil)
	mockAccountRepo.On("GetByIDForUpdate", ctx, int64(123456)).Return(account, nil)
	mockAccountRepo.On("ApplyDelta", ctx, int64(123456), int64(15)).Return(int64(20), nil)

	mockEntryRepo.On("Record", ctx, mock.MatchedBy(func(e *models.BalanceEntry) bool {
		return e.AccountID == 123456 &&
			e.BalanceBefore == 5 &&
			e.BalanceAfter == 20 &&
			e.ChangeAmount == 15 &&
			e.TransactionType == models.TransactionTypeWithdrawalRefund
	})).Return(nil)

	err := service.Reject(ctx, requestID, reason)

	assert.NoError(t, err)
	mockWithdrawalRepo.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockEntryRepo.AssertExpectations(t)
}

func TestWithdrawalService_Reject_NoRefund(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockAccountRepo, _, mockWithdrawalRepo := setupWithdrawalServiceMocks()
	service := NewWithdrawalService(mockFactory, testTiers, 5, false)

	requestID := uuid.New()
	pending := &models.WithdrawalRequest{
		ID:        requestID,
		AccountID: 123456,
		TierID:    "small",
		Cost:      15,
		Status:    models.WithdrawalStatusPending,
	}
	reason := "fraud"

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWithdrawalRepo.On("GetByID", ctx, requestID).Return(pending, nil)
	mockWithdrawalRepo.On("Resolve", ctx, requestID, models.WithdrawalStatusRejected, &reason).Return(true, nil)

	err := service.Reject(ctx, requestID, reason)

	assert.NoError(t, err)
	mockAccountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
}

func TestWithdrawalService_Reject_NotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, _, mockWithdrawalRepo := setupWithdrawalServiceMocks()
	service := NewWithdrawalService(mockFactory, testTiers, 5, true)

	requestID := uuid.New()

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWithdrawalRepo.On("GetByID", ctx, requestID).Return(nil, nil)

	err := service.Reject(ctx, requestID, "whatever")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithdrawalService_Tiers(t *testing.T) {
	_, mockFactory, _, _, _ := setupWithdrawalServiceMocks()
	service := NewWithdrawalService(mockFactory, testTiers, 5, true)

	tiers := service.Tiers()

	assert.Len(t, tiers, 2)
	assert.Equal(t, "small", tiers[0].ID)
	assert.Equal(t, int64(100), tiers[1].Cost)
}
