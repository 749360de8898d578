package cache

import (
	"context"
	"encoding/json"
	"time"

	"affiliate-locator/internal/models"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by Redis. Values are stored as JSON.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the cached dataset, treating a missing key as a miss.
func (s *RedisStore) Get(ctx context.Context, key string) ([]models.Affiliate, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "redis get %s", key)
	}

	var value []models.Affiliate
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false, errors.Wrap(err, "failed to unmarshal cache")
	}
	return value, true, nil
}

// Set stores value with the given ttl.
func (s *RedisStore) Set(ctx context.Context, key string, value []models.Affiliate, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Delete(ctx, key)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "failed to marshal cache")
	}
	return errors.Wrapf(s.client.Set(ctx, key, data, ttl).Err(), "redis set %s", key)
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(s.client.Del(ctx, key).Err(), "redis del %s", key)
}
