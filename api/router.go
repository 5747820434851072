package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the route table for the ledger boundary
func NewRouter(svcs Services) http.Handler {
	h := NewHandler(svcs)
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/accounts", h.CreateAccount)
	r.Get("/accounts/{accountID}", h.GetAccount)
	r.Get("/accounts/{accountID}/stats", h.GetStats)
	r.Get("/accounts/{accountID}/entries", h.BalanceHistory)
	r.Get("/accounts/{accountID}/settlements", h.AccountSettlements)
	r.Post("/accounts/{accountID}/bets", h.PlaceBet)
	r.Post("/accounts/{accountID}/withdrawals", h.SubmitWithdrawal)

	r.Get("/withdrawals/tiers", h.ListTiers)
	r.Get("/withdrawals/pending", h.ListPendingWithdrawals)
	r.Post("/withdrawals/{requestID}/approve", h.ApproveWithdrawal)
	r.Post("/withdrawals/{requestID}/reject", h.RejectWithdrawal)

	r.Post("/admin/accounts/{accountID}/adjust", h.AdjustBalance)
	r.Put("/admin/accounts/{accountID}/blocked", h.SetBlocked)
	r.Get("/admin/accounts", h.ListAccountIDs)
	r.Get("/admin/overview", h.Overview)
	r.Get("/admin/settlements", h.RecentSettlements)

	return r
}
