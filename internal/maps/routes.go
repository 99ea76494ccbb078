package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"greenride/internal/domain"
)

// RouteService resolves driving routes via the Google Maps Directions
// API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// Route returns distance, duration and the overview polyline for a
// driving route between the two points.
func (s *RouteService) Route(ctx context.Context, origin, destination domain.Coordinate) (*domain.RouteInfo, error) {
	r := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", origin.Lat, origin.Lng),
		Destination: fmt.Sprintf("%f,%f", destination.Lat, destination.Lng),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, fmt.Errorf("no route found")
	}

	route := routes[0]
	leg := route.Legs[0]
	return &domain.RouteInfo{
		DistanceMeters:  leg.Distance.Meters,
		DurationSeconds: int(leg.Duration.Seconds()),
		Polyline:        route.OverviewPolyline.Points,
		Summary:         route.Summary,
	}, nil
}
