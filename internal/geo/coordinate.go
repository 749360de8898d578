package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies within the WGS 84 ranges.
// Distance calculations do not require it.
func (c Coordinate) Valid() bool {
	return c.finite() && s2.LatLngFromDegrees(c.Latitude, c.Longitude).IsValid()
}

func (c Coordinate) finite() bool {
	return !math.IsNaN(c.Latitude) && !math.IsInf(c.Latitude, 0) &&
		!math.IsNaN(c.Longitude) && !math.IsInf(c.Longitude, 0)
}
