package binding

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Request/response structs use snake_case JSON.

type CreateRequest struct {
	UserHandle string `json:"user_handle"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

type CreateResponse struct {
	ID string `json:"id"`
}

type SubmitDetailsRequest struct {
	ID        string          `json:"id"`
	ExtraInfo json.RawMessage `json:"extra_info,omitempty"`
}

type DetailsView struct {
	ID               string          `json:"id"`
	Status           string          `json:"status"`
	Step             int             `json:"step"`
	DetailsSubmitted bool            `json:"details_submitted"`
	ExtraInfo        json.RawMessage `json:"extra_info,omitempty"`
}

type SubmitDetailsResponse struct {
	Updated DetailsView `json:"updated"`
}

// StatusView is what the polling client sees: disposition fields only,
// never the stored credential.
type StatusView struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Step      int       `json:"step"`
	AdminNote *string   `json:"admin_note"`
	CreatedAt time.Time `json:"created_at"`
}

type StatusResponse struct {
	Bind *StatusView `json:"bind"`
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
	id, err := h.svc.Create(r.Context(), req.UserHandle, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			http.Error(w, `{"error":"missing_fields"}`, http.StatusBadRequest)
			return
		}
		h.log.Error("create bind failed", "error", err)
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(CreateResponse{ID: id.String()})
}

func (h *Handler) SubmitDetails(w http.ResponseWriter, r *http.Request) {
	var req SubmitDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, `{"error":"missing_id"}`, http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		http.Error(w, `{"error":"invalid_id"}`, http.StatusBadRequest)
		return
	}
	updated, err := h.svc.SubmitDetails(r.Context(), id, req.ExtraInfo)
	if err != nil {
		if errors.Is(err, ErrBindNotFound) {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		h.log.Error("submit bind details failed", "error", err, "bind_id", id)
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(SubmitDetailsResponse{Updated: DetailsView{
		ID:               updated.ID.String(),
		Status:           updated.Status,
		Step:             updated.Step,
		DetailsSubmitted: updated.DetailsSubmitted,
		ExtraInfo:        updated.ExtraInfo,
	}})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		http.Error(w, `{"error":"missing_id"}`, http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, `{"error":"invalid_id"}`, http.StatusBadRequest)
		return
	}
	b, err := h.svc.Status(r.Context(), id)
	if err != nil && !errors.Is(err, ErrBindNotFound) {
		h.log.Error("bind status failed", "error", err, "bind_id", id)
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	resp := StatusResponse{}
	if b != nil {
		resp.Bind = &StatusView{
			ID:        b.ID.String(),
			Status:    b.Status,
			Step:      b.Step,
			AdminNote: b.AdminNote,
			CreatedAt: b.CreatedAt,
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
