package session

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptyHandle  = errors.New("handle is required")
	ErrInvalidToken = errors.New("invalid token")
)

type Service interface {
	IssueToken(ctx context.Context, handle string) (string, error)
	ValidateToken(ctx context.Context, token string) (string, error)
}

type service struct {
	secret []byte
	ttl    time.Duration
}

func NewService() *service {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "supersecretmvp"
	}
	return &service{secret: []byte(secret), ttl: 24 * time.Hour}
}

// Ensure service implements Service at compile time.
var _ Service = (*service)(nil)

// IssueToken signs a session token carrying the handle as subject. There is
// no password step; the handle is public and authorization is decided per
// request by the gating checks, not by the session.
func (s *service) IssueToken(_ context.Context, handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", ErrEmptyHandle
	}
	c := jwt.RegisteredClaims{
		Subject:   handle,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

// ValidateToken returns the handle a token was issued for.
func (s *service) ValidateToken(_ context.Context, token string) (string, error) {
	tok, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	c, ok := tok.Claims.(*jwt.RegisteredClaims)
	if !ok || !tok.Valid || c.Subject == "" {
		return "", ErrInvalidToken
	}
	return c.Subject, nil
}
