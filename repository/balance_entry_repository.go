package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"dogshouse/database"
	"dogshouse/models"
)

// BalanceEntryRepository implements the service.BalanceEntryRepository interface
type BalanceEntryRepository struct {
	q queryable
}

// NewBalanceEntryRepository creates a new balance entry repository
func NewBalanceEntryRepository(db *database.DB) *BalanceEntryRepository {
	return &BalanceEntryRepository{q: db.Pool}
}

// newBalanceEntryRepositoryWithTx creates a new balance entry repository with a transaction
func newBalanceEntryRepositoryWithTx(tx queryable) *BalanceEntryRepository {
	return &BalanceEntryRepository{q: tx}
}

// Record creates a new balance entry
func (r *BalanceEntryRepository) Record(ctx context.Context, entry *models.BalanceEntry) error {
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal entry metadata: %w", err)
	}

	query := `
		INSERT INTO balance_entries
		(account_id, balance_before, balance_after, change_amount, transaction_type, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		entry.AccountID,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.ChangeAmount,
		entry.TransactionType,
		metadataJSON,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record balance entry for account %d: %w", entry.AccountID, err)
	}

	return nil
}

// GetByAccount returns recent balance entries for an account
func (r *BalanceEntryRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.BalanceEntry, error) {
	query := `
		SELECT id, account_id, balance_before, balance_after, change_amount,
		       transaction_type, metadata, created_at
		FROM balance_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance entries for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var entries []*models.BalanceEntry
	for rows.Next() {
		var entry models.BalanceEntry
		var metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.ChangeAmount,
			&entry.TransactionType,
			&metadataJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance entry: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal entry metadata: %w", err)
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balance entries: %w", err)
	}

	return entries, nil
}
