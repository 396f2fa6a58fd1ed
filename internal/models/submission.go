package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission status enum. Disposition is written by the admin actor.
const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

type Submission struct {
	ID         uuid.UUID `json:"id"`
	UserHandle string    `json:"user_handle"`
	// UserID is set when a row was keyed by profile id instead of handle
	// (older rows; see the resolve package for the fallback lookup).
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	OfferID   uuid.UUID  `json:"offer_id"`
	ProofURL  string     `json:"proof_url"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}
