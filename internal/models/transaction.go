package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/money"
)

// TransactionKind is the direction of a ledger entry.
type TransactionKind string

const (
	Credit TransactionKind = "credit"
	Debit  TransactionKind = "debit"
)

// DepositDescription is the fixed description of deposit records.
const DepositDescription = "Money added to wallet"

// TransactionDB is an immutable ledger entry. A transfer writes two of them
// (one debit, one credit) sharing TransferID.
type TransactionDB struct {
	TransactionID uuid.UUID       `json:"transaction_id" db:"transaction_id"`
	OwnerID       uuid.UUID       `json:"owner_id" db:"owner_id"`
	Amount        money.Amount    `json:"amount" db:"amount"`
	Kind          TransactionKind `json:"kind" db:"kind"`
	Counterparty  string          `json:"counterparty" db:"counterparty"`
	Description   string          `json:"description" db:"description"`
	TransferID    uuid.NullUUID   `json:"transfer_id" db:"transfer_id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
