package models

import (
	"time"
)

// Account represents one user's ledger record
type Account struct {
	ID             int64     `db:"id"` // external platform user id
	Username       string    `db:"username"`
	Balance        int64     `db:"balance"`
	GamesPlayed    int64     `db:"games_played"`
	TotalWins      int64     `db:"total_wins"`
	TotalLosses    int64     `db:"total_losses"`
	ReferredBy     *int64    `db:"referred_by"` // set at creation, immutable
	Referrals      []int64   `db:"-"`           // Calculated field: ids referred by this account, oldest first
	IsBlocked      bool      `db:"is_blocked"`
	CreatedAt      time.Time `db:"created_at"`
	LastActivityAt time.Time `db:"last_activity_at"`
}

// AccountStats is the read model behind the user-facing stats screen
type AccountStats struct {
	Balance       int64
	GamesPlayed   int64
	TotalWins     int64
	TotalLosses   int64
	WinRate       float64
	ReferralCount int
}

// Stats derives the stats read model from the account
func (a *Account) Stats() *AccountStats {
	stats := &AccountStats{
		Balance:       a.Balance,
		GamesPlayed:   a.GamesPlayed,
		TotalWins:     a.TotalWins,
		TotalLosses:   a.TotalLosses,
		ReferralCount: len(a.Referrals),
	}
	if a.GamesPlayed > 0 {
		stats.WinRate = float64(a.TotalWins) / float64(a.GamesPlayed) * 100
	}
	return stats
}

// AdminOverview aggregates population-wide counts for the admin panel
type AdminOverview struct {
	TotalAccounts    int64
	BlockedAccounts  int64
	TotalSettlements int64
}
