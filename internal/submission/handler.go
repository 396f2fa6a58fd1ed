package submission

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

type SubmitRequest struct {
	UserHandle string `json:"user_handle"`
	OfferID    string `json:"offer_id"`
	ProofURL   string `json:"proof_url"`
}

type SubmitResponse struct {
	ID uuid.UUID `json:"id"`
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

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	offerID, err := uuid.Parse(req.OfferID)
	if err != nil {
		http.Error(w, `{"error":"invalid_offer_id"}`, http.StatusBadRequest)
		return
	}
	id, err := h.svc.Submit(r.Context(), req.UserHandle, offerID, req.ProofURL)
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			http.Error(w, `{"error":"missing_fields"}`, http.StatusBadRequest)
			return
		}
		h.log.Error("record submission failed", "error", err)
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(SubmitResponse{ID: id})
}
