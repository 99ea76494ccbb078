package tests

import (
	"context"
	"sync"

	"greenride/internal/domain"
	"greenride/internal/redis"
)

// MockNotifier records every notification it is asked to deliver.
type MockNotifier struct {
	mu            sync.Mutex
	Notifications []*domain.Notification
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *n
	m.Notifications = append(m.Notifications, &copied)
	return nil
}

// ForRecipient returns the recorded notifications addressed to id.
func (m *MockNotifier) ForRecipient(id string) []*domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Notification
	for _, n := range m.Notifications {
		if n.RecipientID == id {
			out = append(out, n)
		}
	}
	return out
}

// MockRouteProvider returns a fixed route, or an error when Fail is set.
type MockRouteProvider struct {
	Info      *domain.RouteInfo
	Fail      bool
	CallCount int
}

func NewMockRouteProvider() *MockRouteProvider {
	return &MockRouteProvider{
		Info: &domain.RouteInfo{
			DistanceMeters:  12000,
			DurationSeconds: 1500,
			Polyline:        "mock_polyline",
			Summary:         "ORR",
		},
	}
}

func (m *MockRouteProvider) Route(_ context.Context, _, _ domain.Coordinate) (*domain.RouteInfo, error) {
	m.CallCount++
	if m.Fail {
		return nil, context.DeadlineExceeded
	}
	return m.Info, nil
}

// MockLiveStore is an in-memory stand-in for the Redis live feed.
type MockLiveStore struct {
	mu    sync.Mutex
	slots map[string]*domain.LiveLocation
}

func NewMockLiveStore() *MockLiveStore {
	return &MockLiveStore{slots: make(map[string]*domain.LiveLocation)}
}

func (m *MockLiveStore) Set(_ context.Context, loc *domain.LiveLocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *loc
	m.slots[loc.SubjectID] = &copied
	return nil
}

func (m *MockLiveStore) Get(_ context.Context, subjectID string) (*domain.LiveLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc, ok := m.slots[subjectID]
	if !ok {
		return nil, redis.ErrNoLocation
	}
	copied := *loc
	return &copied, nil
}

// MockGeoIndex is an in-memory stand-in for the Redis geo index. It
// records membership only; Nearby returns every member so tests can
// exercise the registry re-check.
type MockGeoIndex struct {
	mu      sync.Mutex
	members map[string][2]float64
	Fail    bool
}

func NewMockGeoIndex() *MockGeoIndex {
	return &MockGeoIndex{members: make(map[string][2]float64)}
}

func (m *MockGeoIndex) Add(_ context.Context, driverID string, lat, lng float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[driverID] = [2]float64{lat, lng}
	return nil
}

func (m *MockGeoIndex) Remove(_ context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members, driverID)
	return nil
}

func (m *MockGeoIndex) Nearby(_ context.Context, _, _, _ float64) ([]redis.DriverPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return nil, context.DeadlineExceeded
	}
	var out []redis.DriverPosition
	for id, pos := range m.members {
		out = append(out, redis.DriverPosition{DriverID: id, Lat: pos[0], Lng: pos[1]})
	}
	return out, nil
}

// Has reports whether the driver is in the index.
func (m *MockGeoIndex) Has(driverID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.members[driverID]
	return ok
}
