package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by ledger operations. All of them are
// recoverable at the call site; the caller decides how to render them.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("account already exists")
	ErrAccountBlocked    = errors.New("account is blocked")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadyResolved   = errors.New("withdrawal request already resolved")
	ErrUnknownTier       = errors.New("unknown withdrawal tier")
)

// InvalidBetReason identifies which bet validation predicate failed
type InvalidBetReason string

const (
	InvalidBetBelowMinimum   InvalidBetReason = "below_minimum"
	InvalidBetExceedsBalance InvalidBetReason = "exceeds_balance"
	InvalidBetUnknownVariant InvalidBetReason = "unknown_variant"
)

// InvalidBetError reports a rejected bet with enough detail for the
// caller to render exact guidance
type InvalidBetError struct {
	Reason  InvalidBetReason
	Variant string
	Amount  int64
	MinBet  int64
	Balance int64
}

func (e *InvalidBetError) Error() string {
	switch e.Reason {
	case InvalidBetBelowMinimum:
		return fmt.Sprintf("invalid bet: amount %d is below the minimum of %d", e.Amount, e.MinBet)
	case InvalidBetExceedsBalance:
		return fmt.Sprintf("invalid bet: amount %d exceeds balance %d", e.Amount, e.Balance)
	case InvalidBetUnknownVariant:
		return fmt.Sprintf("invalid bet: unknown game variant %q", e.Variant)
	}
	return "invalid bet"
}

// NotEligibleReason identifies which withdrawal predicate failed
type NotEligibleReason string

const (
	NotEligibleWinCount NotEligibleReason = "win_count"
	NotEligibleBalance  NotEligibleReason = "balance"
)

// NotEligibleError reports a failed withdrawal eligibility check,
// carrying the numeric shortfall for the failing predicate
type NotEligibleError struct {
	Reason   NotEligibleReason
	Required int64
	Actual   int64
}

func (e *NotEligibleError) Error() string {
	switch e.Reason {
	case NotEligibleWinCount:
		return fmt.Sprintf("not eligible: need %d wins, have %d (%d more required)", e.Required, e.Actual, e.Shortfall())
	case NotEligibleBalance:
		return fmt.Sprintf("not eligible: tier costs %d, balance is %d (%d short)", e.Required, e.Actual, e.Shortfall())
	}
	return "not eligible for withdrawal"
}

// Shortfall returns how far the account is from satisfying the predicate
func (e *NotEligibleError) Shortfall() int64 {
	return e.Required - e.Actual
}
