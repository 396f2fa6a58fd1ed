package identity

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Request/response structs use snake_case JSON.

type RegisterRequest struct {
	Handle string `json:"handle"`
}

type RegisterResponse struct {
	Created bool   `json:"created"`
	Status  string `json:"status"`
}

type StatusResponse struct {
	Status string `json:"status"`
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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	result, err := h.svc.Register(r.Context(), req.Handle)
	if err != nil {
		if errors.Is(err, ErrEmptyHandle) {
			http.Error(w, `{"error":"missing_handle"}`, http.StatusBadRequest)
			return
		}
		h.log.Error("register verification failed", "error", err)
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(RegisterResponse{Created: result.Created, Status: result.Status})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	handle := r.URL.Query().Get("handle")
	if handle == "" {
		http.Error(w, `{"error":"missing_handle"}`, http.StatusBadRequest)
		return
	}
	status, err := h.svc.Status(r.Context(), handle)
	if err != nil {
		if errors.Is(err, ErrEmptyHandle) {
			http.Error(w, `{"error":"missing_handle"}`, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrVerificationNotFound) {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		h.log.Error("verification status failed", "error", err)
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(StatusResponse{Status: status})
}
