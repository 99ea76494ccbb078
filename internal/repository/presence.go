package repository

import (
	"context"

	"greenride/internal/domain"
)

// PresenceRegistry stores one DriverPresence record per driver. Writes
// replace the whole record (no field-level updates), so a concurrent
// reader never observes a half-written presence.
type PresenceRegistry interface {
	// Put replaces the driver's record wholesale.
	Put(ctx context.Context, presence *domain.DriverPresence) error

	// Get retrieves a driver's presence record.
	Get(ctx context.Context, driverID string) (*domain.DriverPresence, error)

	// ListOnlineWithRoute returns every driver currently eligible for
	// matching: online and with a declared route. Reads reflect the
	// latest completed Put.
	ListOnlineWithRoute(ctx context.Context) ([]*domain.DriverPresence, error)
}
