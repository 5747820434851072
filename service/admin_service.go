package service

import (
	"context"
	"fmt"

	"dogshouse/models"

	log "github.com/sirupsen/logrus"
)

type adminService struct {
	uowFactory UnitOfWorkFactory
}

// NewAdminService creates a new admin service
func NewAdminService(uowFactory UnitOfWorkFactory) AdminService {
	return &adminService{uowFactory: uowFactory}
}

// AdjustBalance applies a direct balance delta. Unlike settlement it is
// exempt from the blocked-account check, but the non-negative balance
// invariant still holds.
func (s *adminService) AdjustBalance(ctx context.Context, accountID int64, delta int64, reason string) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return 0, ErrNotFound
	}

	newBalance, err := uow.AccountRepository().ApplyDelta(ctx, accountID, delta)
	if err != nil {
		return 0, err
	}

	entry := &models.BalanceEntry{
		AccountID:       accountID,
		BalanceBefore:   account.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    delta,
		TransactionType: models.TransactionTypeAdminAdjust,
		Metadata: map[string]any{
			"reason": reason,
		},
	}
	if err := RecordBalanceChange(ctx, uow, entry); err != nil {
		return 0, fmt.Errorf("failed to record adjustment: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"accountID":  accountID,
		"delta":      delta,
		"newBalance": newBalance,
		"reason":     reason,
	}).Info("Admin balance adjustment applied")

	return newBalance, nil
}

// SetBlocked flips an account's blocked flag. The operation is idempotent.
func (s *adminService) SetBlocked(ctx context.Context, accountID int64, blocked bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.AccountRepository().SetBlocked(ctx, accountID, blocked); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"accountID": accountID,
		"blocked":   blocked,
	}).Info("Account blocked flag updated")

	return nil
}

// AccountIDs returns every account id for broadcast fan-out. Delivery is
// the boundary's concern; a failure toward one recipient must not stop
// the iteration there.
func (s *adminService) AccountIDs(ctx context.Context) ([]int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ids, err := uow.AccountRepository().AllIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list account ids: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return ids, nil
}

// Overview returns population-wide counts for the admin panel
func (s *adminService) Overview(ctx context.Context) (*models.AdminOverview, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	total, blocked, err := uow.AccountRepository().CountAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	settlements, err := uow.SettlementRepository().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count settlements: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.AdminOverview{
		TotalAccounts:    total,
		BlockedAccounts:  blocked,
		TotalSettlements: settlements,
	}, nil
}
