// Package geo computes great-circle distances between coordinates.
package geo

import (
	"math"

	"store-locator-service/internal/domain"
)

// EarthRadiusMiles is the mean Earth radius.
const EarthRadiusMiles = 3958.7613

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance returns the haversine distance between a and b in miles.
// It is symmetric and returns exactly 0 for identical points.
func Distance(a, b domain.Coordinate) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	// Rounding can push h just outside [0, 1] for (anti)podal pairs.
	h = math.Min(1, math.Max(0, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMiles * c
}
