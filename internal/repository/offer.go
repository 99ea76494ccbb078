package repository

import (
	"context"
	"time"

	"greenride/internal/domain"
)

// OfferBoard stores the set of ride offers. The accept race is resolved
// here with a single atomic compare-and-set; everything else is plain
// read-modify-write keyed by trip ID.
type OfferBoard interface {
	// Create persists a new offer. Returns ErrConflict if the rider
	// already has a non-terminal offer; the check and the insert are
	// one atomic step.
	Create(ctx context.Context, offer *domain.RideOffer) error

	// Get retrieves an offer by trip ID.
	Get(ctx context.Context, tripID string) (*domain.RideOffer, error)

	// Update replaces an existing offer wholesale.
	Update(ctx context.Context, offer *domain.RideOffer) error

	// ListSeeking returns every offer still looking for a driver.
	ListSeeking(ctx context.Context) ([]*domain.RideOffer, error)

	// ActiveByRider returns the rider's non-terminal offer, or
	// ErrNotFound if the rider has none.
	ActiveByRider(ctx context.Context, riderID string) (*domain.RideOffer, error)

	// AcceptDriver atomically transitions the offer's driver response
	// from Pending to Accepted, assigning the driver, price and
	// matched-at stamp, and moving the offer to Matched. Exactly one
	// concurrent caller succeeds; losers get ErrConflict.
	AcceptDriver(ctx context.Context, tripID, driverID string, price float64, matchedAt time.Time) (*domain.RideOffer, error)
}
