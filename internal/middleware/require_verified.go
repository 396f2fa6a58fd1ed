package middleware

import (
	"context"
	"net/http"
)

// OfferwallGate decides offerwall access for a handle. The gating engine
// satisfies it.
type OfferwallGate interface {
	CanAccessOfferwall(ctx context.Context, handle string) (bool, error)
}

// RequireVerified re-checks identity verification on every request. There
// is no caching here on purpose: an admin rejection must close the
// offerwall on the next call.
func RequireVerified(gate OfferwallGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handle, ok := HandleFromCtx(r.Context())
			if !ok {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			allowed, err := gate.CanAccessOfferwall(r.Context(), handle)
			if err != nil {
				http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
				return
			}
			if !allowed {
				http.Error(w, `{"error":"not_verified"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
