// Package memory holds the in-process registries backing the matching
// core. Records are swapped whole under a registry lock and handed out
// as copies, so callers get linearizable reads without field-level
// locking. The same implementations serve production wiring and tests.
package memory

import (
	"context"
	"sync"

	"greenride/internal/domain"
	"greenride/internal/repository"
)

// PresenceRegistry is an in-memory repository.PresenceRegistry.
type PresenceRegistry struct {
	mu      sync.RWMutex
	drivers map[string]*domain.DriverPresence
}

// NewPresenceRegistry creates an empty presence registry.
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		drivers: make(map[string]*domain.DriverPresence),
	}
}

// Put replaces the driver's record wholesale.
func (r *PresenceRegistry) Put(ctx context.Context, presence *domain.DriverPresence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[presence.DriverID] = presence.Clone()
	return nil
}

// Get retrieves a copy of the driver's presence record.
func (r *PresenceRegistry) Get(ctx context.Context, driverID string) (*domain.DriverPresence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	presence, ok := r.drivers[driverID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return presence.Clone(), nil
}

// ListOnlineWithRoute returns copies of every match-eligible record.
func (r *PresenceRegistry) ListOnlineWithRoute(ctx context.Context) ([]*domain.DriverPresence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*domain.DriverPresence, 0, len(r.drivers))
	for _, p := range r.drivers {
		if p.MatchCandidate() {
			result = append(result, p.Clone())
		}
	}
	return result, nil
}

var _ repository.PresenceRegistry = (*PresenceRegistry)(nil)
