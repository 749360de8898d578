package cache

import (
	"context"
	"time"

	"affiliate-locator/internal/models"
)

// Store keeps dataset snapshots under a key for a limited time.
type Store interface {
	// Get returns the live entry for key, if any.
	Get(ctx context.Context, key string) ([]models.Affiliate, bool, error)
	// Set stores value under key. A non-positive ttl removes the key instead.
	Set(ctx context.Context, key string, value []models.Affiliate, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
