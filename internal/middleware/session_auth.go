package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const ctxHandleKey contextKey = "handle"

// TokenValidator resolves a bearer token back to the handle it was issued
// for. The session service satisfies it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

// SessionAuth authenticates requests by validating the Bearer token and
// putting the resolved handle into request context. Everything downstream
// works from that explicit handle.
func SessionAuth(sessions TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			handle, err := sessions.ValidateToken(r.Context(), raw)
			if err != nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithHandle(r.Context(), handle)))
		})
	}
}

// HandleFromCtx returns the authenticated handle, if any.
func HandleFromCtx(ctx context.Context) (string, bool) {
	h, ok := ctx.Value(ctxHandleKey).(string)
	return h, ok && h != ""
}

// WithHandle returns a context carrying the given handle.
func WithHandle(ctx context.Context, handle string) context.Context {
	return context.WithValue(ctx, ctxHandleKey, handle)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
