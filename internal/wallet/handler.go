package wallet

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tapvault/backend/internal/middleware"
	"github.com/tapvault/backend/internal/models"
)

type WithdrawRequest struct {
	UserHandle string          `json:"user_handle"`
	Method     string          `json:"method"`
	Amount     decimal.Decimal `json:"amount"`
	UPIID      string          `json:"upi_id,omitempty"`
	Email      string          `json:"email,omitempty"`
	Phone      string          `json:"phone,omitempty"`
}

type WithdrawResponse struct {
	Success bool         `json:"success"`
	Data    WithdrawData `json:"data"`
}

type WithdrawData struct {
	ID         string `json:"id"`
	Method     string `json:"method"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
	NewBalance string `json:"new_balance"`
}

type BalanceResponse struct {
	Balance string `json:"balance"`
}

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	req.UserHandle = strings.TrimSpace(req.UserHandle)
	if req.UserHandle == "" || req.Method == "" {
		http.Error(w, `{"error":"missing_params"}`, http.StatusBadRequest)
		return
	}
	dest := Destination{UPIID: req.UPIID, Email: req.Email, Phone: req.Phone}
	result, err := h.svc.RequestWithdrawal(r.Context(), req.UserHandle, req.Method, req.Amount, dest)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownMethod):
			http.Error(w, `{"error":"missing_params"}`, http.StatusBadRequest)
		case errors.Is(err, ErrBelowMinimum):
			http.Error(w, `{"error":"below_minimum"}`, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidDestination):
			http.Error(w, `{"error":"invalid_destination"}`, http.StatusBadRequest)
		case errors.Is(err, ErrProfileNotFound):
			http.Error(w, `{"error":"profile_not_found"}`, http.StatusBadRequest)
		case errors.Is(err, ErrInsufficientBalance):
			http.Error(w, `{"error":"insufficient_balance"}`, http.StatusBadRequest)
		default:
			h.log.Error("withdrawal failed", "error", err)
			http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(WithdrawResponse{
		Success: true,
		Data: WithdrawData{
			ID:         result.Withdrawal.ID.String(),
			Method:     result.Withdrawal.Method,
			Amount:     result.Withdrawal.Amount.StringFixed(2),
			Status:     result.Withdrawal.Status,
			NewBalance: result.NewBalance.StringFixed(2),
		},
	})
}

// Balance serves the session user's wallet balance.
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	handle, ok := middleware.HandleFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	balance, err := h.svc.Balance(r.Context(), handle)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			http.Error(w, `{"error":"profile_not_found"}`, http.StatusNotFound)
			return
		}
		h.log.Error("balance lookup failed", "error", err)
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(BalanceResponse{Balance: balance.StringFixed(2)})
}

// ListWithdrawals serves the session user's withdrawal history.
func (h *Handler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	handle, ok := middleware.HandleFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	list, err := h.svc.ListWithdrawals(r.Context(), handle)
	if err != nil {
		h.log.Error("list withdrawals failed", "error", err)
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Withdrawal{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(list)
}
