package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"affiliate-locator/internal/dataset"
	"affiliate-locator/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DatasetKey is the store key holding the parsed affiliates dataset.
const DatasetKey = "affiliates_data"

// ErrDatasetLoadFailed is returned when the dataset is not cached and could
// not be loaded from its source.
var ErrDatasetLoadFailed = errors.New("unable to load affiliates data")

// DatasetCache is a cache-aside wrapper around a dataset.Loader.
// Concurrent misses share a single load.
type DatasetCache struct {
	loader dataset.Loader
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	logger zerolog.Logger

	// mu orders Invalidate against stores of in-flight loads; gen counts
	// invalidations.
	mu  sync.Mutex
	gen uint64
}

// New creates a DatasetCache. A non-positive ttl disables retention.
func New(loader dataset.Loader, store Store, ttl time.Duration, logger zerolog.Logger) *DatasetCache {
	return &DatasetCache{
		loader: loader,
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "dataset_cache").Logger(),
	}
}

// GetDataset returns the cached dataset, loading it on a miss. The returned
// slice is owned by the caller.
func (c *DatasetCache) GetDataset(ctx context.Context) ([]models.Affiliate, error) {
	if affiliates, ok := c.lookup(ctx); ok {
		return affiliates, nil
	}

	v, err, _ := c.group.Do(DatasetKey, func() (any, error) {
		c.mu.Lock()
		gen := c.gen
		c.mu.Unlock()

		// the load is shared, so one caller going away must not cancel it
		loadCtx := context.WithoutCancel(ctx)

		// another caller may have filled the entry while we waited
		if affiliates, ok := c.lookup(loadCtx); ok {
			return affiliates, nil
		}

		affiliates, err := c.loader.Load(loadCtx)
		if err != nil {
			c.logger.Error().Err(err).Msg("error loading affiliates data")
			return nil, fmt.Errorf("cache: %w: %w", ErrDatasetLoadFailed, err)
		}

		c.save(loadCtx, gen, affiliates)
		return affiliates, nil
	})
	if err != nil {
		return nil, err
	}

	return slices.Clone(v.([]models.Affiliate)), nil
}

// save stores a freshly loaded dataset unless Invalidate ran after the load
// started.
func (c *DatasetCache) save(ctx context.Context, gen uint64, affiliates []models.Affiliate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.logger.Debug().Msg("dataset invalidated during load, not storing")
		return
	}
	if err := c.store.Set(ctx, DatasetKey, affiliates, c.ttl); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store affiliates data")
	}
}

// Invalidate drops the cached dataset regardless of its age. Loads already
// running are detached: later callers start a new load and the older result
// is not stored.
func (c *DatasetCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.group.Forget(DatasetKey)

	if err := c.store.Delete(ctx, DatasetKey); err != nil {
		return fmt.Errorf("cache: invalidate: %w", err)
	}
	return nil
}

func (c *DatasetCache) lookup(ctx context.Context) ([]models.Affiliate, bool) {
	affiliates, ok, err := c.store.Get(ctx, DatasetKey)
	if err != nil {
		c.logger.Warn().Err(err).Msg("cache read failed, treating as miss")
		return nil, false
	}
	return affiliates, ok
}
