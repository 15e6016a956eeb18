package domain

import "math"

// Immutable geographic coordinates (latitude, longitude) in decimal degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Report whether the coordinate is finite and within lat [-90, 90], lng [-180, 180].
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}

	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}
