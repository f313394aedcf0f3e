package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
)

// maxSearchResults caps the number of profiles returned by Search.
const maxSearchResults = 50

// AccountDirectory maps a user identity to exactly one account and resolves
// counterparty profiles. It never mutates anything but its cache.
type AccountDirectory struct {
	accounts AccountReader
	users    UserReader
	cache    ProfileCache
}

// NewAccountDirectory creates an AccountDirectory. cache may be nil.
func NewAccountDirectory(accounts AccountReader, users UserReader, cache ProfileCache) *AccountDirectory {
	return &AccountDirectory{
		accounts: accounts,
		users:    users,
		cache:    cache,
	}
}

// Resolve returns the account owned by ownerID or models.ErrAccountNotFound.
func (d *AccountDirectory) Resolve(ctx context.Context, ownerID uuid.UUID) (*models.AccountDB, error) {
	account, err := d.accounts.GetByOwnerID(ctx, ownerID)
	if err != nil {
		logger.Log.Errorw("failed to resolve account", "ownerID", ownerID, "error", err)
		return nil, err
	}
	if account == nil {
		return nil, models.ErrAccountNotFound
	}
	return account, nil
}

// Profile returns the public profile of ownerID. The cache is consulted
// first; cache failures only cost a database read.
func (d *AccountDirectory) Profile(ctx context.Context, ownerID uuid.UUID) (*models.Profile, error) {
	if d.cache != nil {
		profile, err := d.cache.GetProfile(ctx, ownerID)
		if err == nil {
			return profile, nil
		}
		logger.Log.Debugw("profile cache miss", "ownerID", ownerID, "error", err)
	}

	user, err := d.users.GetByID(ctx, ownerID)
	if err != nil {
		logger.Log.Errorw("failed to get user profile", "ownerID", ownerID, "error", err)
		return nil, err
	}
	if user == nil {
		return nil, models.ErrAccountNotFound
	}

	profile := user.Profile()
	if d.cache != nil {
		if err := d.cache.SetProfile(ctx, profile); err != nil {
			logger.Log.Warnw("failed to cache profile", "ownerID", ownerID, "error", err)
		}
	}
	return &profile, nil
}

// Search returns profiles whose first or last name contains filter.
func (d *AccountDirectory) Search(ctx context.Context, filter string) ([]models.Profile, error) {
	users, err := d.users.Search(ctx, filter, maxSearchResults)
	if err != nil {
		logger.Log.Errorw("failed to search users", "filter", filter, "error", err)
		return nil, err
	}

	profiles := make([]models.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	return profiles, nil
}
