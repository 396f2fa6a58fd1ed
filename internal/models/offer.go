package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Offer is admin-managed catalog data. Read-only from this codebase.
type Offer struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Reward    decimal.Decimal `json:"reward"`
	Active    bool            `json:"active"`
	IsPremium bool            `json:"is_premium"`
	CreatedAt time.Time       `json:"created_at"`
}
