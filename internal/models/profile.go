package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Profile holds the authoritative wallet balance for a handle.
// balance is NUMERIC(12,2) in the database and must never go negative;
// the wallet repository enforces that with a conditional debit.
type Profile struct {
	ID        uuid.UUID       `json:"id"`
	Handle    string          `json:"handle"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
