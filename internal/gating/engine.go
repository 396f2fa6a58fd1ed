package gating

import (
	"context"

	"github.com/tapvault/backend/internal/models"
)

// The engine keeps no state and caches nothing. Every answer is recomputed
// from current storage, so an admin flipping a status is visible on the
// next request.

// BindChecker reports whether the handle currently has a live account bind.
type BindChecker interface {
	IsBound(ctx context.Context, handle string) (bool, error)
}

// SubmissionCounter reports the handle's approved submission count.
type SubmissionCounter interface {
	CountApproved(ctx context.Context, handle string) (int, error)
}

// VerificationReader reports the handle's identity verification status.
type VerificationReader interface {
	Status(ctx context.Context, handle string) (string, error)
}

type Engine struct {
	binds         BindChecker
	submissions   SubmissionCounter
	verifications VerificationReader
}

func NewEngine(binds BindChecker, submissions SubmissionCounter, verifications VerificationReader) *Engine {
	return &Engine{binds: binds, submissions: submissions, verifications: verifications}
}

// CanAccessPremium requires a live bind and at least one approved
// submission. Both legs are checked on every call.
func (e *Engine) CanAccessPremium(ctx context.Context, handle string) (bool, error) {
	bound, err := e.binds.IsBound(ctx, handle)
	if err != nil {
		return false, err
	}
	if !bound {
		return false, nil
	}
	n, err := e.submissions.CountApproved(ctx, handle)
	if err != nil {
		return false, err
	}
	return n >= 1, nil
}

// CanAccessOfferwall requires an approved identity verification.
func (e *Engine) CanAccessOfferwall(ctx context.Context, handle string) (bool, error) {
	status, err := e.verifications.Status(ctx, handle)
	if err != nil {
		return false, err
	}
	return status == models.VerificationApproved, nil
}
