package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial           TransactionType = "initial"
	TransactionTypeBetWin            TransactionType = "bet_win"
	TransactionTypeBetLoss           TransactionType = "bet_loss"
	TransactionTypeReferralReward    TransactionType = "referral_reward"
	TransactionTypeWithdrawalReserve TransactionType = "withdrawal_reserve"
	TransactionTypeWithdrawalRefund  TransactionType = "withdrawal_refund"
	TransactionTypeAdminAdjust       TransactionType = "admin_adjust"
)

// BalanceEntry represents a historical balance change
type BalanceEntry struct {
	ID              int64           `db:"id"`
	AccountID       int64           `db:"account_id"`
	BalanceBefore   int64           `db:"balance_before"`
	BalanceAfter    int64           `db:"balance_after"`
	ChangeAmount    int64           `db:"change_amount"`
	TransactionType TransactionType `db:"transaction_type"`
	Metadata        map[string]any  `db:"metadata"`
	CreatedAt       time.Time       `db:"created_at"`
}
