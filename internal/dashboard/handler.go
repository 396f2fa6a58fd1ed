package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tapvault/backend/internal/identity"
	"github.com/tapvault/backend/internal/middleware"
	"github.com/tapvault/backend/internal/models"
	"github.com/tapvault/backend/internal/wallet"
)

// The summary endpoint backs the home screen: one call, everything the
// client needs to render verification, bind and wallet state.

type VerificationReader interface {
	Status(ctx context.Context, handle string) (string, error)
}

type BindReader interface {
	LatestByHandle(ctx context.Context, handle string) (*models.AccountBind, error)
}

type SubmissionCounter interface {
	CountApproved(ctx context.Context, handle string) (int, error)
}

type BalanceReader interface {
	Balance(ctx context.Context, handle string) (decimal.Decimal, error)
}

type PremiumGate interface {
	CanAccessPremium(ctx context.Context, handle string) (bool, error)
}

type Handler struct {
	verifications VerificationReader
	binds         BindReader
	submissions   SubmissionCounter
	wallets       BalanceReader
	gate          PremiumGate
	log           *slog.Logger
}

func NewHandler(
	verifications VerificationReader,
	binds BindReader,
	submissions SubmissionCounter,
	wallets BalanceReader,
	gate PremiumGate,
	log *slog.Logger,
) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		verifications: verifications,
		binds:         binds,
		submissions:   submissions,
		wallets:       wallets,
		gate:          gate,
		log:           log,
	}
}

type BindSummary struct {
	ID               string  `json:"id"`
	Status           string  `json:"status"`
	Step             int     `json:"step"`
	DetailsSubmitted bool    `json:"details_submitted"`
	AdminNote        *string `json:"admin_note,omitempty"`
}

type Summary struct {
	Handle             string       `json:"handle"`
	VerificationStatus string       `json:"verification_status"`
	Bind               *BindSummary `json:"bind"`
	ApprovedCount      int          `json:"approved_count"`
	Balance            string       `json:"balance"`
	PremiumUnlocked    bool         `json:"premium_unlocked"`
}

// GET /api/v1/me
//
// Missing pieces degrade instead of failing the whole summary: a user with
// no profile row yet still gets their verification state back.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	handle, ok := middleware.HandleFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	ctx := r.Context()
	out := Summary{Handle: handle, Balance: "0.00"}

	status, err := h.verifications.Status(ctx, handle)
	switch {
	case err == nil:
		out.VerificationStatus = status
	case errors.Is(err, identity.ErrVerificationNotFound):
		out.VerificationStatus = models.VerificationPending
	default:
		h.log.Error("summary verification lookup failed", "error", err)
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}

	if bind, err := h.binds.LatestByHandle(ctx, handle); err == nil {
		out.Bind = &BindSummary{
			ID:               bind.ID.String(),
			Status:           bind.Status,
			Step:             bind.Step,
			DetailsSubmitted: bind.DetailsSubmitted,
			AdminNote:        bind.AdminNote,
		}
	}

	if n, err := h.submissions.CountApproved(ctx, handle); err == nil {
		out.ApprovedCount = n
	}

	balance, err := h.wallets.Balance(ctx, handle)
	if err == nil {
		out.Balance = balance.StringFixed(2)
	} else if !errors.Is(err, wallet.ErrProfileNotFound) {
		h.log.Error("summary balance lookup failed", "error", err)
	}

	if unlocked, err := h.gate.CanAccessPremium(ctx, handle); err == nil {
		out.PremiumUnlocked = unlocked
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
}
