package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
)

type UserReadRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewUserReadRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *UserReadRepository {
	return &UserReadRepository{db: db, txGetter: txGetter}
}

// GetByUsername returns the user with the given username, or nil.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	const query = `
		SELECT user_id, username, first_name, last_name, password_hash, created_at, updated_at
		FROM users
		WHERE username = $1
	`
	return r.getOne(ctx, query, strings.ToLower(username))
}

// GetByID returns the user with the given id, or nil.
func (r *UserReadRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error) {
	const query = `
		SELECT user_id, username, first_name, last_name, password_hash, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`
	return r.getOne(ctx, query, userID)
}

func (r *UserReadRepository) getOne(ctx context.Context, query string, arg any) (*models.UserDB, error) {
	var user models.UserDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &user, query, arg)

	// Log with query in single line
	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{arg},
		"result", user.UserID,
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err)
	}
	return &user, nil
}

// Search returns users whose first or last name contains filter, case-insensitively.
func (r *UserReadRepository) Search(ctx context.Context, filter string, limit int) ([]models.UserDB, error) {
	const query = `
		SELECT user_id, username, first_name, last_name, password_hash, created_at, updated_at
		FROM users
		WHERE first_name ILIKE '%' || $1 || '%' ESCAPE '\'
		   OR last_name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY first_name, last_name, user_id
		LIMIT $2
	`

	pattern := escapeLike(filter)
	users := []models.UserDB{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &users, query, pattern, limit)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{pattern, limit},
		"result", len(users),
		"error", err,
	)

	if err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

// escapeLike escapes LIKE wildcards so filter is matched literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type UserWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewUserWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *UserWriteRepository {
	return &UserWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts a new user. A duplicate username yields models.ErrAlreadyExists.
func (r *UserWriteRepository) Save(ctx context.Context, user models.UserDB) error {
	const query = `
		INSERT INTO users (user_id, username, first_name, last_name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	args := []any{user.UserID, strings.ToLower(user.Username), user.FirstName, user.LastName, user.PasswordHash}

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	// Log with query in single line, without the password hash
	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args[:4],
		"result", rowsAffected,
		"error", err,
	)

	return mapError(err)
}
