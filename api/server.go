package api

import (
	"net/http"
	"time"

	"dogshouse/service"
)

// Services bundles the core operations exposed over the HTTP boundary
type Services struct {
	Accounts    service.AccountService
	Settlement  service.SettlementService
	Withdrawals service.WithdrawalService
	Admin       service.AdminService
}

// NewServer creates and returns a configured *http.Server for the ledger API
func NewServer(addr string, svcs Services) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(svcs),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
