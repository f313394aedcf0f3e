package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
)

// PostgreSQL SQLSTATE codes the ledger reacts to.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgNumericOutOfRange    = "22003"
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgAdminShutdown        = "57P01"
	pgCannotConnectNow     = "57P03"
)

// mapError translates driver errors into the ledger error taxonomy.
// Errors that are already ledger errors, context errors and unknown
// errors are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var ledgerErr *models.Error
	if errors.As(err, &ledgerErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected:
			return fmt.Errorf("%w: %w", models.ErrConflict, err)
		case pgErr.Code == pgNumericOutOfRange:
			return fmt.Errorf("%w: %w", models.ErrInvalidAmount, err)
		case pgErr.Code == pgUniqueViolation:
			return fmt.Errorf("%w: %w", models.ErrAlreadyExists, err)
		case pgErr.Code == pgCheckViolation && pgErr.ConstraintName == "accounts_balance_non_negative":
			return fmt.Errorf("%w: %w", models.ErrInsufficientFunds, err)
		case strings.HasPrefix(pgErr.Code, "08"), pgErr.Code == pgAdminShutdown, pgErr.Code == pgCannotConnectNow:
			return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
		}
		return err
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}

	return err
}
