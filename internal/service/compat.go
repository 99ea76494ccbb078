package service

import (
	"greenride/internal/domain"
	"greenride/internal/geo"
)

// DefaultMaxDeviationKm is the deviation budget used when no override is
// configured.
const DefaultMaxDeviationKm = 2.0

// RouteMatch carries the deviation breakdown for a compatible pairing.
// Score is originDev+destDev; lower ranks first.
type RouteMatch struct {
	OriginDeviationKm      float64
	DestinationDeviationKm float64
	Score                  float64
}

// MatchRoute decides whether a rider's origin/destination pair is along
// a driver's declared route.
//
// Primary acceptance: both deviations within maxDeviationKm. Secondary,
// OR'd with primary: origin within 1.5x and destination within 2.0x.
// The asymmetry is intentional: origin proximity matters more for a
// realistic pickup, so the destination gets the looser leeway.
//
// A nil route or out-of-range coordinate never matches and never errors;
// only a non-positive maxDeviationKm is a configuration error.
func MatchRoute(route *domain.DeclaredRoute, riderOrigin, riderDestination domain.Coordinate, maxDeviationKm float64) (bool, RouteMatch, error) {
	if maxDeviationKm <= 0 {
		return false, RouteMatch{}, ErrInvalidDeviation
	}
	if route == nil {
		return false, RouteMatch{}, nil
	}
	if !route.Origin.Coordinate.Valid() || !route.Destination.Coordinate.Valid() ||
		!riderOrigin.Valid() || !riderDestination.Valid() {
		return false, RouteMatch{}, nil
	}

	originDev := geo.DistanceKm(route.Origin.Coordinate, riderOrigin)
	destDev := geo.DistanceKm(route.Destination.Coordinate, riderDestination)

	primary := originDev <= maxDeviationKm && destDev <= maxDeviationKm
	secondary := originDev <= maxDeviationKm*1.5 && destDev <= maxDeviationKm*2.0

	match := RouteMatch{
		OriginDeviationKm:      originDev,
		DestinationDeviationKm: destDev,
		Score:                  originDev + destDev,
	}

	return primary || secondary, match, nil
}

// MatchPercent derives a display-only match percentage from a score.
// Clamped to [0,100]; never used for acceptance decisions.
func MatchPercent(score float64) float64 {
	percent := 100 - score/2*10
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
