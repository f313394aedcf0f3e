package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
)

// LedgerRepository runs atomic units of work against the ledger tables.
type LedgerRepository struct {
	db   *sqlx.DB
	opts *sql.TxOptions
}

// NewLedgerRepository creates a LedgerRepository using READ COMMITTED
// transactions. Row locks taken inside the unit provide the isolation the
// engines rely on.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{
		db:   db,
		opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted},
	}
}

// ApplyAtomic runs fn inside a single database transaction. Repositories
// called with the context passed to fn join that transaction. The unit is
// committed when fn returns nil and rolled back on error or panic.
// Calls nested in an already running unit join the outer one.
func (r *LedgerRepository) ApplyAtomic(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if GetTxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := r.db.BeginTxx(ctx, r.opts)
	if err != nil {
		logger.Log.Errorw("failed to begin transaction", "error", err)
		return mapError(err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			_ = tx.Rollback()
			panic(rec)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				logger.Log.Errorw("failed to rollback transaction", "error", rbErr)
			}
			err = mapError(err)
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			logger.Log.Errorw("failed to commit transaction", "error", cErr)
			err = mapError(fmt.Errorf("commit: %w", cErr))
		}
	}()

	err = fn(setTxToContext(ctx, tx))
	return err
}
