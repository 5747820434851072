package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"dogshouse/games"
	"dogshouse/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Handler wraps the core services and exposes HTTP handlers
type Handler struct {
	svcs Services
}

// NewHandler returns a new Handler
func NewHandler(svcs Services) *Handler {
	return &Handler{svcs: svcs}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, code string, msg string, details map[string]any) {
	body := map[string]any{"error": code, "message": msg}
	for k, v := range details {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// writeServiceError maps domain errors to HTTP responses, carrying the
// structured detail the caller needs to render exact guidance
func writeServiceError(w http.ResponseWriter, err error) {
	var invalidBet *service.InvalidBetError
	var notEligible *service.NotEligibleError

	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, service.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already_exists", err.Error(), nil)
	case errors.Is(err, service.ErrAccountBlocked):
		writeError(w, http.StatusForbidden, "account_blocked", err.Error(), nil)
	case errors.Is(err, service.ErrInsufficientFunds):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_funds", err.Error(), nil)
	case errors.Is(err, service.ErrAlreadyResolved):
		writeError(w, http.StatusConflict, "already_resolved", err.Error(), nil)
	case errors.Is(err, service.ErrUnknownTier):
		writeError(w, http.StatusNotFound, "unknown_tier", err.Error(), nil)
	case errors.As(err, &invalidBet):
		writeError(w, http.StatusUnprocessableEntity, "invalid_bet", invalidBet.Error(), map[string]any{
			"reason":  string(invalidBet.Reason),
			"amount":  invalidBet.Amount,
			"min_bet": invalidBet.MinBet,
			"balance": invalidBet.Balance,
		})
	case errors.As(err, &notEligible):
		writeError(w, http.StatusUnprocessableEntity, "not_eligible", notEligible.Error(), map[string]any{
			"reason":    string(notEligible.Reason),
			"required":  notEligible.Required,
			"actual":    notEligible.Actual,
			"shortfall": notEligible.Shortfall(),
		})
	default:
		log.WithError(err).Error("Unexpected error handling request")
		writeError(w, http.StatusInternalServerError, "internal", "internal error", nil)
	}
}

func accountIDParam(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "accountID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid account id %q", idStr)
	}
	return id, nil
}

func requestIDParam(r *http.Request) (uuid.UUID, error) {
	idStr := chi.URLParam(r, "requestID")
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid request id %q", idStr)
	}
	return id, nil
}

type createAccountRequest struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	ReferredBy *int64 `json:"referred_by,omitempty"`
}

// CreateAccount handles POST /accounts
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}
	if req.ID == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "id is required", nil)
		return
	}

	account, err := h.svcs.Accounts.CreateAccount(r.Context(), req.ID, req.Username, req.ReferredBy)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

// GetAccount handles GET /accounts/{accountID}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	account, err := h.svcs.Accounts.GetAccount(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "not_found", "account not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// GetStats handles GET /accounts/{accountID}/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	stats, err := h.svcs.Accounts.GetStats(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func limitParam(r *http.Request, def int) (int, error) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(limitStr)
	if err != nil || parsed <= 0 || parsed > 100 {
		return 0, fmt.Errorf("limit must be between 1 and 100")
	}
	return parsed, nil
}

// BalanceHistory handles GET /accounts/{accountID}/entries
func (h *Handler) BalanceHistory(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	limit, err := limitParam(r, 20)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	entries, err := h.svcs.Accounts.BalanceHistory(r.Context(), id, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// AccountSettlements handles GET /accounts/{accountID}/settlements
func (h *Handler) AccountSettlements(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	limit, err := limitParam(r, 20)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	records, err := h.svcs.Settlement.AccountSettlements(r.Context(), id, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

type placeBetRequest struct {
	Variant string `json:"variant"`
	Amount  int64  `json:"amount"`
}

// PlaceBet handles POST /accounts/{accountID}/bets
func (h *Handler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	var req placeBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}

	result, err := h.svcs.Settlement.PlaceBet(r.Context(), id, games.Variant(req.Variant), req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type submitWithdrawalRequest struct {
	TierID  string `json:"tier_id"`
	Payload string `json:"payload"`
}

// SubmitWithdrawal handles POST /accounts/{accountID}/withdrawals
func (h *Handler) SubmitWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	var req submitWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}

	request, err := h.svcs.Withdrawals.Submit(r.Context(), id, req.TierID, req.Payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, request)
}

// ListTiers handles GET /withdrawals/tiers
func (h *Handler) ListTiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svcs.Withdrawals.Tiers())
}

// ListPendingWithdrawals handles GET /withdrawals/pending
func (h *Handler) ListPendingWithdrawals(w http.ResponseWriter, r *http.Request) {
	requests, err := h.svcs.Withdrawals.ListPending(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requests)
}

// ApproveWithdrawal handles POST /withdrawals/{requestID}/approve
func (h *Handler) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	if err := h.svcs.Withdrawals.Approve(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type rejectWithdrawalRequest struct {
	Reason string `json:"reason"`
}

// RejectWithdrawal handles POST /withdrawals/{requestID}/reject
func (h *Handler) RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	var req rejectWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}

	if err := h.svcs.Withdrawals.Reject(r.Context(), id, req.Reason); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type adjustBalanceRequest struct {
	Delta  int64  `json:"delta"`
	Reason string `json:"reason"`
}

// AdjustBalance handles POST /admin/accounts/{accountID}/adjust
func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	var req adjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}

	newBalance, err := h.svcs.Admin.AdjustBalance(r.Context(), id, req.Delta, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"balance": newBalance})
}

type setBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

// SetBlocked handles PUT /admin/accounts/{accountID}/blocked
func (h *Handler) SetBlocked(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	var req setBlockedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}

	if err := h.svcs.Admin.SetBlocked(r.Context(), id, req.Blocked); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAccountIDs handles GET /admin/accounts
func (h *Handler) ListAccountIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svcs.Admin.AccountIDs(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]int64{"account_ids": ids})
}

// Overview handles GET /admin/overview
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svcs.Admin.Overview(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

// RecentSettlements handles GET /admin/settlements
func (h *Handler) RecentSettlements(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r, 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	records, err := h.svcs.Settlement.RecentSettlements(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}
