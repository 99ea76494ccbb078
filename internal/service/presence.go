package service

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"greenride/internal/domain"
	"greenride/internal/geo"
	"greenride/internal/observability"
	"greenride/internal/redis"
	"greenride/internal/repository"
)

// PresenceService owns the driver presence lifecycle: online/offline
// toggles, wholesale route declaration, and location updates.
type PresenceService struct {
	registry repository.PresenceRegistry
	geoIndex redis.DriverGeoIndexInterface
}

// NewPresenceService creates a new PresenceService. The geo index is
// optional; when present it is kept in sync best-effort as a radius
// query accelerator.
func NewPresenceService(registry repository.PresenceRegistry, geoIndex redis.DriverGeoIndexInterface) *PresenceService {
	return &PresenceService{
		registry: registry,
		geoIndex: geoIndex,
	}
}

// DeclaredRouteInput is the route payload of a set-online call.
type DeclaredRouteInput struct {
	Origin       domain.Place
	Destination  domain.Place
	Waypoints    []domain.Coordinate
	PricePerRide float64
}

// SetOnlineRequest contains the parameters for going online.
type SetOnlineRequest struct {
	DriverID string
	Location *domain.Coordinate
	Route    *DeclaredRouteInput
}

// SetOnline marks the driver online, creating the presence record on
// first use. A supplied route fully replaces any prior route; without a
// route on record the driver stays invisible to matching.
func (s *PresenceService) SetOnline(ctx context.Context, req SetOnlineRequest) (*domain.DriverPresence, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.Location != nil && !req.Location.Valid() {
		return nil, ErrInvalidCoordinate
	}
	if req.Route != nil {
		if !req.Route.Origin.Coordinate.Valid() || !req.Route.Destination.Coordinate.Valid() {
			return nil, ErrInvalidCoordinate
		}
		if req.Route.PricePerRide < 0 {
			return nil, ErrInvalidPrice
		}
		for _, wp := range req.Route.Waypoints {
			if !wp.Valid() {
				return nil, ErrInvalidCoordinate
			}
		}
	}

	presence, err := s.registry.Get(ctx, req.DriverID)
	if errors.Is(err, repository.ErrNotFound) {
		presence = &domain.DriverPresence{DriverID: req.DriverID}
	} else if err != nil {
		return nil, err
	}

	if !presence.Online {
		observability.DriversOnline.Inc()
	}
	presence.Online = true

	now := time.Now()
	if req.Location != nil {
		loc := *req.Location
		presence.Location = &loc
		presence.LocationUpdatedAt = now
	}
	if req.Route != nil {
		presence.Route = &domain.DeclaredRoute{
			Origin:       req.Route.Origin,
			Destination:  req.Route.Destination,
			Waypoints:    append([]domain.Coordinate(nil), req.Route.Waypoints...),
			PricePerRide: req.Route.PricePerRide,
			SetAt:        now,
		}
	}

	if err := s.registry.Put(ctx, presence); err != nil {
		return nil, err
	}

	if s.geoIndex != nil && presence.Location != nil {
		_ = s.geoIndex.Add(ctx, presence.DriverID, presence.Location.Lat, presence.Location.Lng)
	}

	return presence, nil
}

// SetOffline marks the driver offline. Route and last known location
// are retained for display; the entry drops out of all match listings.
func (s *PresenceService) SetOffline(ctx context.Context, driverID string) (*domain.DriverPresence, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	presence, err := s.registry.Get(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if presence.Online {
		observability.DriversOnline.Dec()
	}
	presence.Online = false

	if err := s.registry.Put(ctx, presence); err != nil {
		return nil, err
	}

	if s.geoIndex != nil {
		_ = s.geoIndex.Remove(ctx, driverID)
	}

	return presence, nil
}

// UpdateLocation records the driver's current position.
func (s *PresenceService) UpdateLocation(ctx context.Context, driverID string, coord domain.Coordinate) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if !coord.Valid() {
		return ErrInvalidCoordinate
	}

	presence, err := s.registry.Get(ctx, driverID)
	if err != nil {
		return err
	}

	presence.Location = &coord
	presence.LocationUpdatedAt = time.Now()

	if err := s.registry.Put(ctx, presence); err != nil {
		return err
	}

	if s.geoIndex != nil && presence.Online {
		_ = s.geoIndex.Add(ctx, driverID, coord.Lat, coord.Lng)
	}

	return nil
}

// Get retrieves a driver's presence record.
func (s *PresenceService) Get(ctx context.Context, driverID string) (*domain.DriverPresence, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.registry.Get(ctx, driverID)
}

// NearbyDriver is one entry of a nearby-drivers listing.
type NearbyDriver struct {
	DriverID     string
	Location     domain.Coordinate
	DistanceKm   float64
	PricePerRide float64
}

// NearbyDrivers returns online drivers within radiusKm of the center,
// nearest first. The Redis geo index is the fast path; candidates are
// always re-checked against the registry so a stale index entry can
// never surface an offline driver.
func (s *PresenceService) NearbyDrivers(ctx context.Context, center domain.Coordinate, radiusKm float64) ([]NearbyDriver, error) {
	if !center.Valid() {
		return nil, ErrInvalidCoordinate
	}
	if radiusKm <= 0 {
		return nil, ErrInvalidRadius
	}

	if s.geoIndex != nil {
		positions, err := s.geoIndex.Nearby(ctx, center.Lat, center.Lng, radiusKm)
		if err == nil {
			return s.verifyCandidates(ctx, center, positions), nil
		}
		// Index unavailable; fall through to the registry scan.
	}

	online, err := s.registry.ListOnlineWithRoute(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]NearbyDriver, 0, len(online))
	for _, p := range online {
		if p.Location == nil {
			continue
		}
		d := geo.DistanceKm(center, *p.Location)
		if d > radiusKm {
			continue
		}
		result = append(result, NearbyDriver{
			DriverID:     p.DriverID,
			Location:     *p.Location,
			DistanceKm:   d,
			PricePerRide: routePrice(p.Route),
		})
	}
	slices.SortFunc(result, func(a, b NearbyDriver) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})
	return result, nil
}

func (s *PresenceService) verifyCandidates(ctx context.Context, center domain.Coordinate, positions []redis.DriverPosition) []NearbyDriver {
	result := make([]NearbyDriver, 0, len(positions))
	for _, pos := range positions {
		presence, err := s.registry.Get(ctx, pos.DriverID)
		if err != nil || !presence.Online {
			continue
		}
		loc := domain.Coordinate{Lat: pos.Lat, Lng: pos.Lng}
		result = append(result, NearbyDriver{
			DriverID:     pos.DriverID,
			Location:     loc,
			DistanceKm:   geo.DistanceKm(center, loc),
			PricePerRide: routePrice(presence.Route),
		})
	}
	return result
}

func routePrice(route *domain.DeclaredRoute) float64 {
	if route == nil {
		return 0
	}
	return route.PricePerRide
}
