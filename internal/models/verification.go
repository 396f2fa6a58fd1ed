package models

import "time"

// Verification status enum. Status transitions are written by the admin
// review tooling directly in the database; this codebase only ever inserts
// pending rows and reads whatever is there now.
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

type Verification struct {
	Handle    string    `json:"handle"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
