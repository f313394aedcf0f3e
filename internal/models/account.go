package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/money"
)

// AccountDB represents an account row in the database
type AccountDB struct {
	AccountID uuid.UUID    `json:"account_id" db:"account_id"` // Unique account identifier
	OwnerID   uuid.UUID    `json:"owner_id" db:"owner_id"`     // Owning user, one account per user
	Balance   money.Amount `json:"balance" db:"balance"`       // Balance in minor units, never negative
	CreatedAt time.Time    `json:"created_at" db:"created_at"` // Timestamp when the account was opened
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"` // Timestamp of the last balance change
}
