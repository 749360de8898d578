package geo

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidEntityShape is returned when an entity's coordinate cannot be read.
var ErrInvalidEntityShape = errors.New("entity has no readable latitude/longitude")

// Locatable is implemented by entities that can be filtered by distance.
// WithDistance must return a copy carrying the computed distance and leave
// the receiver untouched.
type Locatable[T any] interface {
	Coordinate() Coordinate
	WithDistance(km float64) T
}

// SortOrder describes how FilterByDistance orders its result.
type SortOrder[T any] struct {
	// Compare returns a negative number when a sorts before b. Nil keeps input order.
	Compare    func(a, b T) int
	Descending bool
}

// FilterByDistance enriches every item with its distance from ref, keeps the
// ones within maxKm (inclusive) and stable-sorts them by order.
func FilterByDistance[T Locatable[T]](items []T, ref Coordinate, maxKm float64, order SortOrder[T]) ([]T, error) {
	out := make([]T, 0, len(items))
	for i, item := range items {
		c := item.Coordinate()
		if !c.finite() {
			return nil, fmt.Errorf("geo: item %d: %w", i, ErrInvalidEntityShape)
		}

		d := Distance(ref, c)
		if d <= maxKm {
			out = append(out, item.WithDistance(d))
		}
	}

	if order.Compare != nil {
		cmp := order.Compare
		if order.Descending {
			cmp = func(a, b T) int { return order.Compare(b, a) }
		}
		slices.SortStableFunc(out, cmp)
	}

	return out, nil
}
