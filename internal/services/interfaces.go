package services

//go:generate mockgen -source=interfaces.go -destination=mock_interfaces_test.go -package=services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/money"
)

// LedgerStore runs fn as a single all-or-nothing unit. Repositories called
// with the context handed to fn take part in the unit.
type LedgerStore interface {
	ApplyAtomic(ctx context.Context, fn func(ctx context.Context) error) error
}

// AccountLocker reads accounts under lock and mutates balances. Only the
// deposit and transfer engines hold one.
type AccountLocker interface {
	LockByOwnerIDs(ctx context.Context, ownerIDs ...uuid.UUID) (map[uuid.UUID]*models.AccountDB, error) // Locks accounts in ascending account id order
	AdjustBalance(ctx context.Context, accountID uuid.UUID, delta money.Amount) (money.Amount, error)   // Adds delta, refusing negative results
}

// AccountOpener creates the single account of a new user.
type AccountOpener interface {
	Open(ctx context.Context, ownerID uuid.UUID, initialBalance money.Amount) (*models.AccountDB, error)
}

// AccountReader looks up accounts without locking.
type AccountReader interface {
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*models.AccountDB, error) // Returns nil when the owner has no account
}

// TransactionAppender appends immutable ledger entries.
type TransactionAppender interface {
	Append(ctx context.Context, records ...models.TransactionDB) error
}

// TransactionReader lists ledger entries newest first.
type TransactionReader interface {
	ListByOwnerID(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.TransactionDB, error)
}

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
	Search(ctx context.Context, filter string, limit int) ([]models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, user models.UserDB) error
}

// ProfileCache caches public profiles.
type ProfileCache interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	SetProfile(ctx context.Context, profile models.Profile) error
}

// ProfileResolver returns the public profile used to label counterparties.
type ProfileResolver interface {
	Profile(ctx context.Context, ownerID uuid.UUID) (*models.Profile, error)
}

// AccountResolver maps an owner to its account.
type AccountResolver interface {
	Resolve(ctx context.Context, ownerID uuid.UUID) (*models.AccountDB, error)
}

// TransactionPublisher announces committed ledger entries. Best effort.
type TransactionPublisher interface {
	Publish(ctx context.Context, records ...models.TransactionDB)
}

// JWTGenerator defines an interface for generating JWT tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID) (string, error)
}
