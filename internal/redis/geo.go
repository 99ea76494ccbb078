package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const driverGeoKey = "drivers:positions"

// DriverPosition is a geo-indexed driver location.
type DriverPosition struct {
	DriverID string
	Lat      float64
	Lng      float64
}

// DriverGeoIndex keeps online drivers in a Redis GEO set for fast
// radius queries. It is a query accelerator only; the presence registry
// stays the source of truth for online state.
type DriverGeoIndex struct {
	client *redis.Client
}

// NewDriverGeoIndex creates a new DriverGeoIndex.
func NewDriverGeoIndex(client *redis.Client) *DriverGeoIndex {
	return &DriverGeoIndex{client: client}
}

// Add stores or moves a driver in the geo set using GEOADD.
func (s *DriverGeoIndex) Add(ctx context.Context, driverID string, lat, lng float64) error {
	return s.client.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      driverID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// Remove drops a driver from the geo set.
func (s *DriverGeoIndex) Remove(ctx context.Context, driverID string) error {
	return s.client.ZRem(ctx, driverGeoKey, driverID).Err()
}

// Nearby returns drivers within radiusKm of the point, nearest first.
func (s *DriverGeoIndex) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]DriverPosition, error) {
	results, err := s.client.GeoRadius(ctx, driverGeoKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	positions := make([]DriverPosition, 0, len(results))
	for _, r := range results {
		positions = append(positions, DriverPosition{
			DriverID: r.Name,
			Lat:      r.Latitude,
			Lng:      r.Longitude,
		})
	}

	return positions, nil
}
