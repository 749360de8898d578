package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"affiliate-locator/internal/geo"
	"affiliate-locator/internal/models"
)

// ErrInvalidDistance is returned for a radius that is not a number.
var ErrInvalidDistance = errors.New("invalid distance")

// DatasetCache interface for dependency injection
type DatasetCache interface {
	GetDataset(ctx context.Context) ([]models.Affiliate, error)
	Invalidate(ctx context.Context) error
}

// Query selects affiliates around the office.
type Query struct {
	// MaxDistanceKm overrides the configured radius when set.
	MaxDistanceKm *float64
	// SortBy names the sort key; empty means models.DefaultSortKey.
	SortBy     string
	Descending bool
}

// AffiliateService contains the business logic for locating affiliates near the office
type AffiliateService struct {
	cache         DatasetCache
	office        geo.Coordinate
	maxDistanceKm float64
}

// NewAffiliateService creates a new affiliate service
func NewAffiliateService(cache DatasetCache, office geo.Coordinate, maxDistanceKm float64) *AffiliateService {
	return &AffiliateService{
		cache:         cache,
		office:        office,
		maxDistanceKm: maxDistanceKm,
	}
}

// DefaultDistanceKm returns the configured search radius.
func (s *AffiliateService) DefaultDistanceKm() float64 {
	return s.maxDistanceKm
}

// WithinDistance returns the affiliates within the requested radius of the
// office, each carrying its distance, ordered by the requested key.
func (s *AffiliateService) WithinDistance(ctx context.Context, q Query) ([]models.Affiliate, error) {
	maxDistance := s.maxDistanceKm
	if q.MaxDistanceKm != nil {
		maxDistance = *q.MaxDistanceKm
	}
	if math.IsNaN(maxDistance) {
		return nil, fmt.Errorf("service: %w: %v", ErrInvalidDistance, maxDistance)
	}

	compare, err := models.AffiliateOrder(q.SortBy)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	affiliates, err := s.cache.GetDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get affiliates: %w", err)
	}

	result, err := geo.FilterByDistance(affiliates, s.office, maxDistance, geo.SortOrder[models.Affiliate]{
		Compare:    compare,
		Descending: q.Descending,
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to filter affiliates: %w", err)
	}

	return result, nil
}

// ClearCache forces the next query to reload the dataset from its source.
func (s *AffiliateService) ClearCache(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("service: failed to clear cache: %w", err)
	}
	return nil
}
