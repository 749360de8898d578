package geo

import "github.com/umahmood/haversine"

// EarthRadiusKm is the mean Earth radius in kilometres. It matches the radius
// the haversine package uses inside Distance.
const EarthRadiusKm = 6371.0

// Distance returns the great-circle distance between a and b in kilometres,
// computed with the haversine formula.
func Distance(a, b Coordinate) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: a.Latitude, Lon: a.Longitude},
		haversine.Coord{Lat: b.Latitude, Lon: b.Longitude},
	)
	return km
}
