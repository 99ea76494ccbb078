package service

import (
	"context"

	"greenride/internal/domain"
	"greenride/internal/repository"
)

const defaultHistoryLimit = 50

// AnalyticsService is the read side over the trip archive.
type AnalyticsService struct {
	archive repository.TripArchive
}

// NewAnalyticsService creates an AnalyticsService.
func NewAnalyticsService(archive repository.TripArchive) *AnalyticsService {
	return &AnalyticsService{archive: archive}
}

// Summary aggregates the user's archived trips.
func (s *AnalyticsService) Summary(ctx context.Context, userID string) (*domain.TripSummary, error) {
	if userID == "" {
		return nil, ErrInvalidRiderID
	}
	return s.archive.SummaryByUser(ctx, userID)
}

// History returns the user's archived trips, newest first.
func (s *AnalyticsService) History(ctx context.Context, userID string, limit int) ([]*domain.TripRecord, error) {
	if userID == "" {
		return nil, ErrInvalidRiderID
	}
	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}
	return s.archive.ListByUser(ctx, userID, limit)
}
