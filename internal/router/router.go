package router

import (
	"net/http"

	"github.com/tapvault/backend/internal/binding"
	"github.com/tapvault/backend/internal/dashboard"
	"github.com/tapvault/backend/internal/identity"
	"github.com/tapvault/backend/internal/offers"
	"github.com/tapvault/backend/internal/session"
	"github.com/tapvault/backend/internal/submission"
	"github.com/tapvault/backend/internal/wallet"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Identity   *identity.Handler
	Session    *session.Handler
	Binding    *binding.Handler
	Submission *submission.Handler
	Wallet     *wallet.Handler
	Offers     *offers.Handler
	Dashboard  *dashboard.Handler
}

// Middleware is the chain pieces the router applies per route group.
type Middleware struct {
	SessionAuth     func(http.Handler) http.Handler
	RequireVerified func(http.Handler) http.Handler
}

// New returns an http.Handler serving the API under /api/v1.
//
// The poll-driven endpoints (verification status, bind status) are public:
// clients hit them before a session exists. Wallet reads and the offer
// catalog require a session; the offerwall additionally requires an
// approved verification.
func New(h Handlers, mw Middleware) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"

	mux.HandleFunc("POST "+base+"/verifications", h.Identity.Register)
	mux.HandleFunc("GET "+base+"/verifications/status", h.Identity.Status)

	mux.HandleFunc("POST "+base+"/session", h.Session.Create)

	mux.HandleFunc("POST "+base+"/bind-requests", h.Binding.Create)
	mux.HandleFunc("POST "+base+"/bind-details", h.Binding.SubmitDetails)
	mux.HandleFunc("GET "+base+"/bind-status", h.Binding.Status)

	mux.HandleFunc("POST "+base+"/submissions", h.Submission.Submit)
	mux.HandleFunc("POST "+base+"/withdrawals", h.Wallet.Withdraw)

	auth := mw.SessionAuth
	verified := mw.RequireVerified

	mux.Handle("GET "+base+"/wallet", auth(http.HandlerFunc(h.Wallet.Balance)))
	mux.Handle("GET "+base+"/withdrawals", auth(http.HandlerFunc(h.Wallet.ListWithdrawals)))
	mux.Handle("GET "+base+"/me", auth(http.HandlerFunc(h.Dashboard.GetMe)))

	mux.Handle("GET "+base+"/offers", auth(verified(http.HandlerFunc(h.Offers.List))))
	mux.Handle("GET "+base+"/offers/premium", auth(verified(http.HandlerFunc(h.Offers.ListPremium))))

	return mux
}
