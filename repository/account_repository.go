package repository

import (
	"context"
	"errors"
	"fmt"

	"dogshouse/database"
	"dogshouse/models"
	"dogshouse/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// AccountRepository implements the service.AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

const accountColumns = `
	a.id,
	a.username,
	a.balance,
	a.games_played,
	a.total_wins,
	a.total_losses,
	a.referred_by,
	a.is_blocked,
	a.created_at,
	a.last_activity_at,
	COALESCE(
		(SELECT array_agg(r.id ORDER BY r.created_at)
		 FROM accounts r
		 WHERE r.referred_by = a.id),
		'{}'
	) AS referrals`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Balance,
		&account.GamesPlayed,
		&account.TotalWins,
		&account.TotalLosses,
		&account.ReferredBy,
		&account.IsBlocked,
		&account.CreatedAt,
		&account.LastActivityAt,
		&account.Referrals,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByID retrieves an account by id, nil when absent
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts a WHERE a.id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}

	return account, nil
}

// GetByIDForUpdate retrieves an account and locks its row until the
// surrounding transaction ends. All mutating operations on one account
// funnel through this lock, which linearizes them.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts a WHERE a.id = $1 FOR UPDATE OF a`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %d: %w", id, err)
	}

	return account, nil
}

// Create creates a new account with the initial balance
func (r *AccountRepository) Create(ctx context.Context, id int64, username string, referredBy *int64, initialBalance int64) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id, username, balance, referred_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, balance, games_played, total_wins, total_losses,
		          referred_by, is_blocked, created_at, last_activity_at
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, id, username, initialBalance, referredBy).Scan(
		&account.ID,
		&account.Username,
		&account.Balance,
		&account.GamesPlayed,
		&account.TotalWins,
		&account.TotalLosses,
		&account.ReferredBy,
		&account.IsBlocked,
		&account.CreatedAt,
		&account.LastActivityAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, service.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create account %d: %w", id, err)
	}

	// A brand new account has no referrals yet
	account.Referrals = []int64{}

	return &account, nil
}

// ApplyDelta atomically applies a balance delta, guarding against a
// negative result in the update itself
func (r *AccountRepository) ApplyDelta(ctx context.Context, id int64, delta int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1
		WHERE id = $2 AND balance + $1 >= 0
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, delta, id).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		// Distinguish a missing account from an insufficient balance
		account, checkErr := r.GetByID(ctx, id)
		if checkErr != nil {
			return 0, fmt.Errorf("failed to check account %d: %w", id, checkErr)
		}
		if account == nil {
			return 0, service.ErrNotFound
		}
		return 0, service.ErrInsufficientFunds
	}
	if err != nil {
		return 0, fmt.Errorf("failed to apply delta for account %d: %w", id, err)
	}

	return newBalance, nil
}

// ApplySettlement applies the net settlement delta and bumps the game
// counters in one update, so balance and counters can never drift apart
func (r *AccountRepository) ApplySettlement(ctx context.Context, id int64, delta int64, won bool) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1,
		    games_played = games_played + 1,
		    total_wins = total_wins + CASE WHEN $2 THEN 1 ELSE 0 END,
		    total_losses = total_losses + CASE WHEN $2 THEN 0 ELSE 1 END,
		    last_activity_at = NOW()
		WHERE id = $3 AND balance + $1 >= 0
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, delta, won, id).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		account, checkErr := r.GetByID(ctx, id)
		if checkErr != nil {
			return 0, fmt.Errorf("failed to check account %d: %w", id, checkErr)
		}
		if account == nil {
			return 0, service.ErrNotFound
		}
		return 0, service.ErrInsufficientFunds
	}
	if err != nil {
		return 0, fmt.Errorf("failed to apply settlement for account %d: %w", id, err)
	}

	return newBalance, nil
}

// ResetTotalWins zeroes the win counter
func (r *AccountRepository) ResetTotalWins(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `UPDATE accounts SET total_wins = 0 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to reset win counter for account %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

// SetBlocked flips the blocked flag
func (r *AccountRepository) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	result, err := r.q.Exec(ctx, `UPDATE accounts SET is_blocked = $1 WHERE id = $2`, blocked, id)
	if err != nil {
		return fmt.Errorf("failed to set blocked flag for account %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

// AllIDs returns every account id, oldest account first
func (r *AccountRepository) AllIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM accounts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list account ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account ids: %w", err)
	}

	return ids, nil
}

// CountAccounts returns total and blocked account counts
func (r *AccountRepository) CountAccounts(ctx context.Context) (int64, int64, error) {
	var total, blocked int64
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_blocked)
		FROM accounts
	`).Scan(&total, &blocked)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return total, blocked, nil
}
