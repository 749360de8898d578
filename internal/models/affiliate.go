package models

import (
	"cmp"
	"errors"
	"fmt"
	"strings"

	"affiliate-locator/internal/geo"
)

// DefaultSortKey orders affiliates by identifier.
const DefaultSortKey = "affiliate_id"

// ErrUnknownSortKey is returned by AffiliateOrder for unsupported keys.
var ErrUnknownSortKey = errors.New("unknown sort key")

// Affiliate represents one row of the affiliates dataset. Distance is nil
// until the record has been measured against a reference point.
type Affiliate struct {
	ID        int      `json:"affiliate_id"`
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Distance  *float64 `json:"distance"`
}

// Coordinate implements geo.Locatable.
func (a Affiliate) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: a.Latitude, Longitude: a.Longitude}
}

// WithDistance returns a copy of a carrying the given distance in kilometres.
func (a Affiliate) WithDistance(km float64) Affiliate {
	a.Distance = &km
	return a
}

var affiliateOrders = map[string]func(a, b Affiliate) int{
	"affiliate_id": func(a, b Affiliate) int { return cmp.Compare(a.ID, b.ID) },
	"name":         func(a, b Affiliate) int { return strings.Compare(a.Name, b.Name) },
	"latitude":     func(a, b Affiliate) int { return cmp.Compare(a.Latitude, b.Latitude) },
	"longitude":    func(a, b Affiliate) int { return cmp.Compare(a.Longitude, b.Longitude) },
	"distance":     compareDistance,
}

// unmeasured records sort last
func compareDistance(a, b Affiliate) int {
	switch {
	case a.Distance == nil && b.Distance == nil:
		return 0
	case a.Distance == nil:
		return 1
	case b.Distance == nil:
		return -1
	}
	return cmp.Compare(*a.Distance, *b.Distance)
}

// AffiliateOrder resolves a sort key name to a comparison function.
// An empty key resolves to DefaultSortKey.
func AffiliateOrder(key string) (func(a, b Affiliate) int, error) {
	if key == "" {
		key = DefaultSortKey
	}
	fn, ok := affiliateOrders[key]
	if !ok {
		return nil, fmt.Errorf("models: %w: %q", ErrUnknownSortKey, key)
	}
	return fn, nil
}
