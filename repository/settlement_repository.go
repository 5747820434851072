package repository

import (
	"context"
	"fmt"

	"dogshouse/database"
	"dogshouse/models"
)

// SettlementRepository implements the service.SettlementRepository interface
type SettlementRepository struct {
	q queryable
}

// NewSettlementRepository creates a new settlement repository
func NewSettlementRepository(db *database.DB) *SettlementRepository {
	return &SettlementRepository{q: db.Pool}
}

// newSettlementRepositoryWithTx creates a new settlement repository with a transaction
func newSettlementRepositoryWithTx(tx queryable) *SettlementRepository {
	return &SettlementRepository{q: tx}
}

// Create appends a settlement record
func (r *SettlementRepository) Create(ctx context.Context, record *models.SettlementRecord) error {
	query := `
		INSERT INTO settlements
		(account_id, variant, bet_amount, outcome, won, payout, balance_entry_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		record.AccountID,
		record.Variant,
		record.BetAmount,
		record.Outcome,
		record.Won,
		record.Payout,
		record.BalanceEntryID,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create settlement record for account %d: %w", record.AccountID, err)
	}

	return nil
}

const settlementColumns = `id, account_id, variant, bet_amount, outcome, won, payout, balance_entry_id, created_at`

func (r *SettlementRepository) querySettlements(ctx context.Context, query string, args ...any) ([]*models.SettlementRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer rows.Close()

	var records []*models.SettlementRecord
	for rows.Next() {
		var record models.SettlementRecord
		err := rows.Scan(
			&record.ID,
			&record.AccountID,
			&record.Variant,
			&record.BetAmount,
			&record.Outcome,
			&record.Won,
			&record.Payout,
			&record.BalanceEntryID,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement record: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement records: %w", err)
	}

	return records, nil
}

// GetByAccount returns recent settlements for an account
func (r *SettlementRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.SettlementRecord, error) {
	query := `
		SELECT ` + settlementColumns + `
		FROM settlements
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	return r.querySettlements(ctx, query, accountID, limit)
}

// GetRecent returns the most recent settlements across all accounts
func (r *SettlementRepository) GetRecent(ctx context.Context, limit int) ([]*models.SettlementRecord, error) {
	query := `
		SELECT ` + settlementColumns + `
		FROM settlements
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	return r.querySettlements(ctx, query, limit)
}

// Count returns the total number of settlements
func (r *SettlementRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM settlements`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count settlements: %w", err)
	}
	return count, nil
}
