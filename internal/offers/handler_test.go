package offers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tapvault/backend/internal/middleware"
	"github.com/tapvault/backend/internal/models"
)

type stubCatalog struct {
	active  []models.Offer
	premium []models.Offer
}

func (s *stubCatalog) ListActive(context.Context) ([]models.Offer, error)  { return s.active, nil }
func (s *stubCatalog) ListPremium(context.Context) ([]models.Offer, error) { return s.premium, nil }

type stubGate struct{ allowed bool }

func (s *stubGate) CanAccessPremium(context.Context, string) (bool, error) {
	return s.allowed, nil
}

func sessionRequest(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return req.WithContext(middleware.WithHandle(req.Context(), "alice"))
}

func TestListReturnsActiveOffers(t *testing.T) {
	catalog := &stubCatalog{active: []models.Offer{{
		ID:     uuid.New(),
		Title:  "Follow the page",
		Reward: decimal.RequireFromString("5.00"),
		Active: true,
	}}}
	h := NewHandler(catalog, &stubGate{}, nil)

	rec := httptest.NewRecorder()
	h.List(rec, sessionRequest("/api/v1/offers"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var list []models.Offer
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("body: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Follow the page" {
		t.Errorf("got %+v, want the active offer", list)
	}
}

func TestListEmptyCatalogIsArray(t *testing.T) {
	h := NewHandler(&stubCatalog{}, &stubGate{}, nil)
	rec := httptest.NewRecorder()
	h.List(rec, sessionRequest("/api/v1/offers"))

	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("empty catalog must encode as [], got %s", got)
	}
}

func TestListPremiumLocked(t *testing.T) {
	catalog := &stubCatalog{premium: []models.Offer{{ID: uuid.New(), Title: "Premium task", IsPremium: true}}}
	h := NewHandler(catalog, &stubGate{allowed: false}, nil)

	rec := httptest.NewRecorder()
	h.ListPremium(rec, sessionRequest("/api/v1/offers/premium"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want 403", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %q", rec.Body.String())
	}
	if body.Error != "premium_locked" {
		t.Errorf("error code: got %q, want premium_locked", body.Error)
	}
	if strings.Contains(rec.Body.String(), "Premium task") {
		t.Error("locked response must not leak the premium catalog")
	}
}

func TestListPremiumUnlocked(t *testing.T) {
	catalog := &stubCatalog{premium: []models.Offer{{ID: uuid.New(), Title: "Premium task", IsPremium: true}}}
	h := NewHandler(catalog, &stubGate{allowed: true}, nil)

	rec := httptest.NewRecorder()
	h.ListPremium(rec, sessionRequest("/api/v1/offers/premium"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var list []models.Offer
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("body: %v", err)
	}
	if len(list) != 1 || !list[0].IsPremium {
		t.Errorf("got %+v, want the premium offer", list)
	}
}

func TestListPremiumWithoutSession(t *testing.T) {
	h := NewHandler(&stubCatalog{}, &stubGate{allowed: true}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/offers/premium", nil)
	rec := httptest.NewRecorder()
	h.ListPremium(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}
