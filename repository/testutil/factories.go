package testutil

import (
	"dogshouse/models"

	"github.com/google/uuid"
)

// CreateTestBalanceEntry creates a balance entry with default values
func CreateTestBalanceEntry(accountID int64, transactionType models.TransactionType) *models.BalanceEntry {
	return &models.BalanceEntry{
		AccountID:       accountID,
		BalanceBefore:   100,
		BalanceAfter:    90,
		ChangeAmount:    -10,
		TransactionType: transactionType,
		Metadata: map[string]any{
			"test": true,
		},
	}
}

// CreateTestSettlement creates a settlement record with default values
func CreateTestSettlement(accountID int64, won bool) *models.SettlementRecord {
	record := &models.SettlementRecord{
		AccountID: accountID,
		Variant:   "dice",
		BetAmount: 10,
		Outcome:   3,
		Won:       won,
	}
	if won {
		record.Outcome = 6
		record.Payout = 20
	}
	return record
}

// CreateTestWithdrawalRequest creates a pending withdrawal request
func CreateTestWithdrawalRequest(accountID int64, tierID string, cost int64) *models.WithdrawalRequest {
	return &models.WithdrawalRequest{
		ID:        uuid.New(),
		AccountID: accountID,
		TierID:    tierID,
		Cost:      cost,
		Payload:   "test-payload",
		Status:    models.WithdrawalStatusPending,
	}
}
