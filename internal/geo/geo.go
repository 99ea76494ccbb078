// Package geo contains pure great-circle math used wherever proximity
// matters. No dependencies, no error cases: callers validate coordinate
// ranges before reaching this package.
package geo

import (
	"math"

	"greenride/internal/domain"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the haversine great-circle distance in kilometres
// between two points. Symmetric, and ~0 (never NaN) for identical points.
func DistanceKm(a, b domain.Coordinate) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	rLat1 := radians(a.Lat)
	rLat2 := radians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	// Floating point can push h a hair past 1 for near-antipodal points,
	// which would make Sqrt(1-h) NaN. Clamp before Atan2.
	if h > 1 {
		h = 1
	}

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// WithinRadiusKm reports whether p lies within radiusKm of center.
func WithinRadiusKm(center, p domain.Coordinate, radiusKm float64) bool {
	return DistanceKm(center, p) <= radiusKm
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
