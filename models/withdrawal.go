package models

import (
	"time"

	"github.com/google/uuid"
)

// WithdrawalStatus represents the state of a withdrawal request
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

// WithdrawalTier is a named reward with a fixed point cost
type WithdrawalTier struct {
	ID   string
	Cost int64
}

// WithdrawalRequest represents a pending or resolved withdrawal.
// The tier cost is debited from the account at submission time, so a
// pending request is a firm reservation, never an option.
type WithdrawalRequest struct {
	ID           uuid.UUID        `db:"id"`
	AccountID    int64            `db:"account_id"`
	TierID       string           `db:"tier_id"`
	Cost         int64            `db:"cost"`
	Payload      string           `db:"payload"` // free-form identifying info supplied by the user
	Status       WithdrawalStatus `db:"status"`
	RejectReason *string          `db:"reject_reason"`
	CreatedAt    time.Time        `db:"created_at"`
	ResolvedAt   *time.Time       `db:"resolved_at"`
}
