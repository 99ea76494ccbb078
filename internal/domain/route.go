package domain

import "time"

// DeclaredRoute is a driver's self-reported route for the current online
// session. It is owned by exactly one driver and replaced wholesale on
// every set-route call; there is no field-level merging.
type DeclaredRoute struct {
	Origin       Place        `json:"origin"`
	Destination  Place        `json:"destination"`
	Waypoints    []Coordinate `json:"waypoints,omitempty"`
	PricePerRide float64      `json:"price_per_ride"`
	SetAt        time.Time    `json:"set_at"`
}

// RouteInfo is the geometry/duration/distance answer from the external
// route provider, attached to a trip once the rider confirms.
type RouteInfo struct {
	DistanceMeters  int
	DurationSeconds int
	Polyline        string
	Summary         string
}
