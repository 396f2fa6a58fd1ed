package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type CreateRequest struct {
	Handle string `json:"handle"`
}

type CreateResponse struct {
	Token string `json:"token"`
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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	token, err := h.svc.IssueToken(r.Context(), req.Handle)
	if err != nil {
		if errors.Is(err, ErrEmptyHandle) {
			http.Error(w, `{"error":"missing_handle"}`, http.StatusBadRequest)
			return
		}
		h.log.Error("issue session token failed", "error", err)
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(CreateResponse{Token: token})
}
