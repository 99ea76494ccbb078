package repository

import (
	"context"

	"greenride/internal/domain"
)

// TripArchive persists terminal trips for history and analytics. The
// archive is write-behind: the live matching flow never reads it.
type TripArchive interface {
	// Save upserts a trip record by trip ID.
	Save(ctx context.Context, record *domain.TripRecord) error

	// ListByUser returns trips where the user was rider or driver,
	// newest first, capped at limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.TripRecord, error)

	// SummaryByUser aggregates the user's archived trips.
	SummaryByUser(ctx context.Context, userID string) (*domain.TripSummary, error)
}
