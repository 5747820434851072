package service

import (
	"context"
	"fmt"

	"dogshouse/events"
	"dogshouse/models"

	"github.com/google/uuid"
)

type withdrawalService struct {
	uowFactory     UnitOfWorkFactory
	tiers          []models.WithdrawalTier
	minWins        int64
	refundOnReject bool
}

// NewWithdrawalService creates a new withdrawal service
func NewWithdrawalService(uowFactory UnitOfWorkFactory, tiers []models.WithdrawalTier, minWins int64, refundOnReject bool) WithdrawalService {
	return &withdrawalService{
		uowFactory:     uowFactory,
		tiers:          tiers,
		minWins:        minWins,
		refundOnReject: refundOnReject,
	}
}

// Tiers returns the configured reward tiers
func (s *withdrawalService) Tiers() []models.WithdrawalTier {
	return s.tiers
}

func (s *withdrawalService) tierByID(tierID string) (*models.WithdrawalTier, error) {
	for i := range s.tiers {
		if s.tiers[i].ID == tierID {
			return &s.tiers[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTier, tierID)
}

// Submit evaluates the eligibility gate and, when it passes, debits the
// tier cost and enqueues a pending request. The debit happens at
// submission time: a pending request is a firm reservation, so the same
// balance cannot back two concurrent submissions.
func (s *withdrawalService) Submit(ctx context.Context, accountID int64, tierID string, payload string) (*models.WithdrawalRequest, error) {
	tier, err := s.tierByID(tierID)
	if err != nil {
		return nil, err
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

	if account.TotalWins < s.minWins {
		return nil, &NotEligibleError{Reason: NotEligibleWinCount, Required: s.minWins, Actual: account.TotalWins}
	}
	if account.Balance < tier.Cost {
		return nil, &NotEligibleError{Reason: NotEligibleBalance, Required: tier.Cost, Actual: account.Balance}
	}

	newBalance, err := uow.AccountRepository().ApplyDelta(ctx, accountID, -tier.Cost)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve tier cost: %w", err)
	}

	entry := &models.BalanceEntry{
		AccountID:       accountID,
		BalanceBefore:   account.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    -tier.Cost,
		TransactionType: models.TransactionTypeWithdrawalReserve,
		Metadata: map[string]any{
			"tier_id": tier.ID,
		},
	}
	if err := RecordBalanceChange(ctx, uow, entry); err != nil {
		return nil, fmt.Errorf("failed to record reservation: %w", err)
	}

	request := &models.WithdrawalRequest{
		ID:        uuid.New(),
		AccountID: accountID,
		TierID:    tier.ID,
		Cost:      tier.Cost,
		Payload:   payload,
		Status:    models.WithdrawalStatusPending,
	}
	if err := uow.WithdrawalRepository().Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create withdrawal request: %w", err)
	}

	uow.EventBus().Publish(events.WithdrawalStateChangeEvent{
		RequestID: request.ID.String(),
		AccountID: accountID,
		NewStatus: models.WithdrawalStatusPending,
		Cost:      tier.Cost,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return request, nil
}

// Approve transitions a pending request to approved and resets the
// originating account's win counter: the withdrawal consumes the
// eligibility just spent, so a new round of wins must accumulate before
// the next one.
func (s *withdrawalService) Approve(ctx context.Context, requestID uuid.UUID) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	request, err := uow.WithdrawalRepository().GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to get withdrawal request: %w", err)
	}
	if request == nil {
		return ErrNotFound
	}
	if request.Status != models.WithdrawalStatusPending {
		return ErrAlreadyResolved
	}

	// Compare-and-set on status guards against a double approval racing past
	// the read above
	resolved, err := uow.WithdrawalRepository().Resolve(ctx, requestID, models.WithdrawalStatusApproved, nil)
	if err != nil {
		return fmt.Errorf("failed to approve withdrawal request: %w", err)
	}
	if !resolved {
		return ErrAlreadyResolved
	}

	if err := uow.AccountRepository().ResetTotalWins(ctx, request.AccountID); err != nil {
		return fmt.Errorf("failed to reset win counter: %w", err)
	}

	uow.EventBus().Publish(events.WithdrawalStateChangeEvent{
		RequestID: requestID.String(),
		AccountID: request.AccountID,
		OldStatus: models.WithdrawalStatusPending,
		NewStatus: models.WithdrawalStatusApproved,
		Cost:      request.Cost,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Reject transitions a pending request to rejected. Whether the reserved
// tier cost flows back to the account is an explicit configuration
// decision, not an accident of the state machine.
func (s *withdrawalService) Reject(ctx context.Context, requestID uuid.UUID, reason string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	request, err := uow.WithdrawalRepository().GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to get withdrawal request: %w", err)
	}
	if request == nil {
		return ErrNotFound
	}
	if request.Status != models.WithdrawalStatusPending {
		return ErrAlreadyResolved
	}

	resolved, err := uow.WithdrawalRepository().Resolve(ctx, requestID, models.WithdrawalStatusRejected, &reason)
	if err != nil {
		return fmt.Errorf("failed to reject withdrawal request: %w", err)
	}
	if !resolved {
		return ErrAlreadyResolved
	}

	if s.refundOnReject {
		account, err := uow.AccountRepository().GetByIDForUpdate(ctx, request.AccountID)
		if err != nil {
			return fmt.Errorf("failed to get account for refund: %w", err)
		}
		if account == nil {
			return fmt.Errorf("account %d vanished for refund", request.AccountID)
		}

		newBalance, err := uow.AccountRepository().ApplyDelta(ctx, request.AccountID, request.Cost)
		if err != nil {
			return fmt.Errorf("failed to refund reservation: %w", err)
		}

		entry := &models.BalanceEntry{
			AccountID:       request.AccountID,
			BalanceBefore:   account.Balance,
			BalanceAfter:    newBalance,
			ChangeAmount:    request.Cost,
			TransactionType: models.TransactionTypeWithdrawalRefund,
			Metadata: map[string]any{
				"tier_id": request.TierID,
				"reason":  reason,
			},
		}
		if err := RecordBalanceChange(ctx, uow, entry); err != nil {
			return fmt.Errorf("failed to record refund: %w", err)
		}
	}

	uow.EventBus().Publish(events.WithdrawalStateChangeEvent{
		RequestID: requestID.String(),
		AccountID: request.AccountID,
		OldStatus: models.WithdrawalStatusPending,
		NewStatus: models.WithdrawalStatusRejected,
		Cost:      request.Cost,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListPending returns pending requests, oldest first
func (s *withdrawalService) ListPending(ctx context.Context) ([]*models.WithdrawalRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	requests, err := uow.WithdrawalRepository().ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending withdrawals: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return requests, nil
}
