package repository

import (
	"context"
	"fmt"

	"dogshouse/database"
	"dogshouse/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WithdrawalRepository implements the service.WithdrawalRepository interface
type WithdrawalRepository struct {
	q queryable
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *database.DB) *WithdrawalRepository {
	return &WithdrawalRepository{q: db.Pool}
}

// newWithdrawalRepositoryWithTx creates a new withdrawal repository with a transaction
func newWithdrawalRepositoryWithTx(tx queryable) *WithdrawalRepository {
	return &WithdrawalRepository{q: tx}
}

// Create appends a new pending request
func (r *WithdrawalRepository) Create(ctx context.Context, request *models.WithdrawalRequest) error {
	query := `
		INSERT INTO withdrawal_requests (id, account_id, tier_id, cost, payload, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		request.ID,
		request.AccountID,
		request.TierID,
		request.Cost,
		request.Payload,
		request.Status,
	).Scan(&request.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal request for account %d: %w", request.AccountID, err)
	}

	return nil
}

// GetByID retrieves a request by id, nil when absent
func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	query := `
		SELECT id, account_id, tier_id, cost, payload, status, reject_reason, created_at, resolved_at
		FROM withdrawal_requests
		WHERE id = $1
	`

	var request models.WithdrawalRequest
	err := r.q.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.AccountID,
		&request.TierID,
		&request.Cost,
		&request.Payload,
		&request.Status,
		&request.RejectReason,
		&request.CreatedAt,
		&request.ResolvedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal request %s: %w", id, err)
	}

	return &request, nil
}

// ListPending returns pending requests, oldest first
func (r *WithdrawalRepository) ListPending(ctx context.Context) ([]*models.WithdrawalRequest, error) {
	query := `
		SELECT id, account_id, tier_id, cost, payload, status, reject_reason, created_at, resolved_at
		FROM withdrawal_requests
		WHERE status = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, models.WithdrawalStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending withdrawals: %w", err)
	}
	defer rows.Close()

	var requests []*models.WithdrawalRequest
	for rows.Next() {
		var request models.WithdrawalRequest
		err := rows.Scan(
			&request.ID,
			&request.AccountID,
			&request.TierID,
			&request.Cost,
			&request.Payload,
			&request.Status,
			&request.RejectReason,
			&request.CreatedAt,
			&request.ResolvedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal request: %w", err)
		}
		requests = append(requests, &request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdrawal requests: %w", err)
	}

	return requests, nil
}

// Resolve transitions a request out of pending with a compare-and-set on
// status, so a second resolution of the same request affects no rows
func (r *WithdrawalRepository) Resolve(ctx context.Context, id uuid.UUID, status models.WithdrawalStatus, rejectReason *string) (bool, error) {
	query := `
		UPDATE withdrawal_requests
		SET status = $1, reject_reason = $2, resolved_at = NOW()
		WHERE id = $3 AND status = $4
	`

	result, err := r.q.Exec(ctx, query, status, rejectReason, id, models.WithdrawalStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to resolve withdrawal request %s: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}
