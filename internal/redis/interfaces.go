package redis

import (
	"context"

	"greenride/internal/domain"
)

// LiveLocationStoreInterface defines the live-location feed contract.
type LiveLocationStoreInterface interface {
	Set(ctx context.Context, loc *domain.LiveLocation) error
	Get(ctx context.Context, subjectID string) (*domain.LiveLocation, error)
}

// DriverGeoIndexInterface defines the driver geo index contract.
type DriverGeoIndexInterface interface {
	Add(ctx context.Context, driverID string, lat, lng float64) error
	Remove(ctx context.Context, driverID string) error
	Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]DriverPosition, error)
}

// Ensure concrete types implement interfaces.
var (
	_ LiveLocationStoreInterface = (*LiveLocationStore)(nil)
	_ DriverGeoIndexInterface    = (*DriverGeoIndex)(nil)
)
