package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
)

// ErrCacheMiss is returned when a profile is not cached.
var ErrCacheMiss = errors.New("profile not found in cache")

// ProfileCacheRepository caches public user profiles in Redis
type ProfileCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached profiles
}

// NewProfileCacheRepository creates a new repository instance with the given TTL
func NewProfileCacheRepository(client *redis.Client, expiration time.Duration) *ProfileCacheRepository {
	return &ProfileCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func profileKey(userID uuid.UUID) string {
	return fmt.Sprintf("profile:%s", userID)
}

// GetProfile fetches a cached profile
func (r *ProfileCacheRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	key := profileKey(userID)

	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		logger.Log.Infow(
			"key", key,
			"result", nil,
			"error", err,
		)
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var profile models.Profile
	if err := json.Unmarshal(val, &profile); err != nil {
		logger.Log.Infow(
			"key", key,
			"value", string(val),
			"result", nil,
			"error", err,
		)
		return nil, err
	}

	logger.Log.Infow(
		"key", key,
		"result", profile.UserID,
		"error", nil,
	)

	return &profile, nil
}

// SetProfile caches a profile with expiration
func (r *ProfileCacheRepository) SetProfile(ctx context.Context, profile models.Profile) error {
	key := profileKey(profile.UserID)

	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.Log.Infow(
		"key", key,
		"result", "ok",
		"error", err,
	)

	return err
}
