package models

import "time"

// SettlementRecord represents one settled wager in the database.
// Records are append-only and never edited; the authoritative balance
// lives on the account row, not in this log.
type SettlementRecord struct {
	ID             int64     `db:"id"`
	AccountID      int64     `db:"account_id"`
	Variant        string    `db:"variant"`
	BetAmount      int64     `db:"bet_amount"`
	Outcome        int       `db:"outcome"`
	Won            bool      `db:"won"`
	Payout         int64     `db:"payout"`
	BalanceEntryID *int64    `db:"balance_entry_id"`
	CreatedAt      time.Time `db:"created_at"`
}

// BetResult represents the outcome of a settled wager (returned to the caller)
type BetResult struct {
	Won        bool
	Variant    string
	BetAmount  int64
	Outcome    int
	Payout     int64
	NewBalance int64
}
