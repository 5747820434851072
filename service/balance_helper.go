package service

import (
	"context"
	"fmt"

	"dogshouse/events"
	"dogshouse/models"
)

// RecordBalanceChange records a balance entry and emits the matching event.
// This is the single entry point for all balance changes in the system;
// the event reaches subscribers only after the unit of work commits.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, entry *models.BalanceEntry) error {
	if err := uow.BalanceEntryRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record balance entry: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:       entry.AccountID,
		OldBalance:      entry.BalanceBefore,
		NewBalance:      entry.BalanceAfter,
		TransactionType: entry.TransactionType,
		ChangeAmount:    entry.ChangeAmount,
	})

	return nil
}
