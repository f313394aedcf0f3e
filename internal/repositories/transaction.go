package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
)

// TransactionRepository appends and lists ledger entries. Entries are never updated or deleted.
type TransactionRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewTransactionRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *TransactionRepository {
	return &TransactionRepository{db: db, txGetter: txGetter}
}

// Append inserts the given records. Call it inside ApplyAtomic to make the
// records part of the same unit as the balance changes.
func (r *TransactionRepository) Append(ctx context.Context, records ...models.TransactionDB) error {
	const query = `
		INSERT INTO transactions (transaction_id, owner_id, amount, kind, counterparty, description, transfer_id, created_at)
		VALUES (:transaction_id, :owner_id, :amount, :kind, :counterparty, :description, :transfer_id, :created_at)
	`

	ext := executor(ctx, r.db, r.txGetter)
	for _, rec := range records {
		_, err := sqlx.NamedExecContext(ctx, ext, query, rec)

		logger.Log.Infow(
			"query", strings.Join(strings.Fields(query), " "),
			"args", []any{rec.TransactionID, rec.OwnerID, rec.Amount, rec.Kind},
			"result", "ok",
			"error", err,
		)

		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

// ListByOwnerID returns the entries of ownerID, newest first.
func (r *TransactionRepository) ListByOwnerID(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.TransactionDB, error) {
	const query = `
		SELECT transaction_id, owner_id, amount, kind, counterparty, description, transfer_id, created_at
		FROM transactions
		WHERE owner_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2 OFFSET $3
	`

	records := []models.TransactionDB{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &records, query, ownerID, limit, offset)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{ownerID, limit, offset},
		"result", len(records),
		"error", err,
	)

	if err != nil {
		return nil, mapError(err)
	}
	return records, nil
}
