package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Withdrawal payout methods.
const (
	MethodUPI        = "upi"
	MethodAmazon     = "amazon"
	MethodFlipkart   = "flipkart"
	MethodGooglePlay = "googleplay"
)

// Withdrawal status enum. Requests are created pending; completed/rejected
// are written by the admin actor when the payout is processed.
const (
	WithdrawalPending   = "pending"
	WithdrawalCompleted = "completed"
	WithdrawalRejected  = "rejected"
)

type Withdrawal struct {
	ID         uuid.UUID       `json:"id"`
	UserHandle string          `json:"user_handle"`
	Method     string          `json:"method"`
	Amount     decimal.Decimal `json:"amount"`
	UPIID      *string         `json:"upi_id,omitempty"`
	Email      *string         `json:"email,omitempty"`
	Phone      *string         `json:"phone,omitempty"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}
