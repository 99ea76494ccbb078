package service

import (
	"context"
	"time"

	"greenride/internal/domain"
	"greenride/internal/redis"
)

// LiveLocationService maintains the last-write-wins position slot each
// driver and rider reports into during an active trip.
type LiveLocationService struct {
	store redis.LiveLocationStoreInterface
}

// NewLiveLocationService creates a LiveLocationService.
func NewLiveLocationService(store redis.LiveLocationStoreInterface) *LiveLocationService {
	return &LiveLocationService{store: store}
}

// Update overwrites the subject's position slot. Older readings are
// simply gone; there is no history.
func (s *LiveLocationService) Update(ctx context.Context, subjectID string, coord domain.Coordinate) (*domain.LiveLocation, error) {
	if subjectID == "" {
		return nil, ErrInvalidSubjectID
	}
	if !coord.Valid() {
		return nil, ErrInvalidCoordinate
	}

	loc := &domain.LiveLocation{
		SubjectID:  subjectID,
		Coordinate: coord,
		UpdatedAt:  time.Now(),
	}
	if err := s.store.Set(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// Get returns the subject's latest reported position.
func (s *LiveLocationService) Get(ctx context.Context, subjectID string) (*domain.LiveLocation, error) {
	if subjectID == "" {
		return nil, ErrInvalidSubjectID
	}
	return s.store.Get(ctx, subjectID)
}
