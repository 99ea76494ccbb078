package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"greenride/internal/domain"
)

// ErrNoLocation is returned when a subject has never pushed a position.
var ErrNoLocation = errors.New("no live location for subject")

// LiveLocationStore keeps the latest position per subject in Redis.
// One key per identity, overwritten on every update (last write wins).
type LiveLocationStore struct {
	client *redis.Client
}

// NewLiveLocationStore creates a new LiveLocationStore.
func NewLiveLocationStore(client *redis.Client) *LiveLocationStore {
	return &LiveLocationStore{client: client}
}

func liveKey(subjectID string) string {
	return fmt.Sprintf("live:location:%s", subjectID)
}

// Set overwrites the subject's slot.
func (s *LiveLocationStore) Set(ctx context.Context, loc *domain.LiveLocation) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, liveKey(loc.SubjectID), data, 0).Err()
}

// Get returns the subject's latest position.
func (s *LiveLocationStore) Get(ctx context.Context, subjectID string) (*domain.LiveLocation, error) {
	data, err := s.client.Get(ctx, liveKey(subjectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoLocation
	}
	if err != nil {
		return nil, err
	}

	var loc domain.LiveLocation
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}
