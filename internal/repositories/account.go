package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/money"
)

// ErrNoTransaction is returned by operations that are only meaningful inside ApplyAtomic.
var ErrNoTransaction = errors.New("operation requires an atomic unit")

// AccountRepository handles account reads and balance mutations
type AccountRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewAccountRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *AccountRepository {
	return &AccountRepository{db: db, txGetter: txGetter}
}

// Open inserts the single account of ownerID with the given starting balance.
func (r *AccountRepository) Open(ctx context.Context, ownerID uuid.UUID, initialBalance money.Amount) (*models.AccountDB, error) {
	const query = `
		INSERT INTO accounts (account_id, owner_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING account_id, owner_id, balance, created_at, updated_at
	`

	var account models.AccountDB
	args := []any{uuid.New(), ownerID, initialBalance}
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &account, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", account,
		"error", err,
	)

	if err != nil {
		err = mapError(err)
		if errors.Is(err, models.ErrAlreadyExists) {
			return nil, models.ErrAccountExists
		}
		return nil, err
	}
	return &account, nil
}

// GetByOwnerID returns the account of ownerID, or nil if the owner has none.
func (r *AccountRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*models.AccountDB, error) {
	const query = `
		SELECT account_id, owner_id, balance, created_at, updated_at
		FROM accounts
		WHERE owner_id = $1
	`

	var account models.AccountDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &account, query, ownerID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{ownerID},
		"result", account,
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err)
	}
	return &account, nil
}

// LockByOwnerIDs locks the accounts of the given owners with SELECT ... FOR UPDATE.
// Rows are locked in ascending account_id order so that two units locking the
// same pair of accounts can never deadlock. Owners without an account are
// absent from the returned map. Must be called inside ApplyAtomic.
func (r *AccountRepository) LockByOwnerIDs(ctx context.Context, ownerIDs ...uuid.UUID) (map[uuid.UUID]*models.AccountDB, error) {
	const query = `
		SELECT account_id, owner_id, balance, created_at, updated_at
		FROM accounts
		WHERE owner_id = ANY($1::uuid[])
		ORDER BY account_id
		FOR UPDATE
	`

	var tx *sqlx.Tx
	if r.txGetter != nil {
		tx = r.txGetter(ctx)
	}
	if tx == nil {
		return nil, ErrNoTransaction
	}

	ids := make([]string, 0, len(ownerIDs))
	for _, id := range ownerIDs {
		ids = append(ids, id.String())
	}

	var rows []models.AccountDB
	err := tx.SelectContext(ctx, &rows, query, ids)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{ids},
		"result", len(rows),
		"error", err,
	)

	if err != nil {
		return nil, mapError(err)
	}

	accounts := make(map[uuid.UUID]*models.AccountDB, len(rows))
	for i := range rows {
		accounts[rows[i].OwnerID] = &rows[i]
	}
	return accounts, nil
}

// AdjustBalance adds delta (which may be negative) to the balance of accountID
// and returns the new balance. The update is conditional on the result staying
// non-negative; otherwise ErrInsufficientFunds is returned and nothing changes.
func (r *AccountRepository) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta money.Amount) (money.Amount, error) {
	const query = `
		UPDATE accounts
		SET balance = balance + $2, updated_at = $3
		WHERE account_id = $1 AND balance + $2 >= 0
		RETURNING balance
	`

	var balance money.Amount
	args := []any{accountID, delta, time.Now().UTC()}
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &balance, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", balance,
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.ErrInsufficientFunds
		}
		return 0, mapError(err)
	}
	return balance, nil
}
