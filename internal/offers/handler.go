package offers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tapvault/backend/internal/middleware"
	"github.com/tapvault/backend/internal/models"
)

// Catalog is the read surface the handler needs. *Repository satisfies it.
type Catalog interface {
	ListActive(ctx context.Context) ([]models.Offer, error)
	ListPremium(ctx context.Context) ([]models.Offer, error)
}

// PremiumGate decides premium access per request.
type PremiumGate interface {
	CanAccessPremium(ctx context.Context, handle string) (bool, error)
}

type Handler struct {
	catalog Catalog
	gate    PremiumGate
	log     *slog.Logger
}

func NewHandler(catalog Catalog, gate PremiumGate, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{catalog: catalog, gate: gate, log: log}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.ListActive(r.Context())
	if err != nil {
		h.log.Error("list offers failed", "error", err)
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	writeList(w, list)
}

// ListPremium re-evaluates premium eligibility on every request before it
// reads the catalog.
func (h *Handler) ListPremium(w http.ResponseWriter, r *http.Request) {
	handle, ok := middleware.HandleFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	allowed, err := h.gate.CanAccessPremium(r.Context(), handle)
	if err != nil {
		h.log.Error("premium gate check failed", "error", err)
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	if !allowed {
		http.Error(w, `{"error":"premium_locked"}`, http.StatusForbidden)
		return
	}
	list, err := h.catalog.ListPremium(r.Context())
	if err != nil {
		h.log.Error("list premium offers failed", "error", err)
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	writeList(w, list)
}

func writeList(w http.ResponseWriter, list []models.Offer) {
	if list == nil {
		list = []models.Offer{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(list)
}
