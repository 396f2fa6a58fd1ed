package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Account bind status enum. pending -> {approved1, rejected};
// approved1 -> approved. approved and rejected are terminal.
// Only the admin actor moves status; this codebase moves step and
// details_submitted through the second-phase detail submission.
const (
	BindPending   = "pending"
	BindApproved1 = "approved1"
	BindApproved  = "approved"
	BindRejected  = "rejected"
)

// Bind step enum: 1 after creation, 2 after details are submitted.
const (
	BindStepCredentials = 1
	BindStepDetails     = 2
)

type AccountBind struct {
	ID                 uuid.UUID       `json:"id"`
	UserHandle         string          `json:"user_handle"`
	Username           string          `json:"username"`
	CredentialMaterial string          `json:"-"`
	Status             string          `json:"status"`
	Step               int             `json:"step"`
	DetailsSubmitted   bool            `json:"details_submitted"`
	ExtraInfo          json.RawMessage `json:"extra_info,omitempty"`
	AdminNote          *string         `json:"admin_note,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
