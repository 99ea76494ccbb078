package memory

import (
	"context"
	"sync"
	"time"

	"greenride/internal/domain"
	"greenride/internal/repository"
)

// OfferBoard is an in-memory repository.OfferBoard. The board mutex
// makes AcceptDriver a true compare-and-set: the Pending check and the
// assignment are one critical section, so exactly one concurrent
// accepter wins.
type OfferBoard struct {
	mu     sync.RWMutex
	offers map[string]*domain.RideOffer
}

// NewOfferBoard creates an empty offer board.
func NewOfferBoard() *OfferBoard {
	return &OfferBoard{
		offers: make(map[string]*domain.RideOffer),
	}
}

// Create persists a new offer. The one-active-offer-per-rider check
// happens here, under the same lock as the insert, so two concurrent
// posts by the same rider cannot both land.
func (b *OfferBoard) Create(ctx context.Context, offer *domain.RideOffer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, o := range b.offers {
		if o.RiderID == offer.RiderID && !o.Status.Terminal() {
			return repository.ErrConflict
		}
	}
	cp := *offer
	b.offers[offer.TripID] = &cp
	return nil
}

// Get retrieves a copy of the offer.
func (b *OfferBoard) Get(ctx context.Context, tripID string) (*domain.RideOffer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	offer, ok := b.offers[tripID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *offer
	return &cp, nil
}

// Update replaces an existing offer wholesale.
func (b *OfferBoard) Update(ctx context.Context, offer *domain.RideOffer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.offers[offer.TripID]; !ok {
		return repository.ErrNotFound
	}
	cp := *offer
	b.offers[offer.TripID] = &cp
	return nil
}

// ListSeeking returns copies of every offer still looking for a driver.
func (b *OfferBoard) ListSeeking(ctx context.Context) ([]*domain.RideOffer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]*domain.RideOffer, 0)
	for _, o := range b.offers {
		if o.Status == domain.OfferStatusSeeking {
			cp := *o
			result = append(result, &cp)
		}
	}
	return result, nil
}

// ActiveByRider returns the rider's non-terminal offer, if any.
func (b *OfferBoard) ActiveByRider(ctx context.Context, riderID string) (*domain.RideOffer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, o := range b.offers {
		if o.RiderID == riderID && !o.Status.Terminal() {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// AcceptDriver resolves the accept race. First responder wins; everyone
// else observes ErrConflict ("already taken").
func (b *OfferBoard) AcceptDriver(ctx context.Context, tripID, driverID string, price float64, matchedAt time.Time) (*domain.RideOffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	offer, ok := b.offers[tripID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if offer.Status != domain.OfferStatusSeeking || offer.DriverResponse != domain.ResponsePending {
		return nil, repository.ErrConflict
	}

	offer.DriverResponse = domain.ResponseAccepted
	offer.MatchedDriverID = driverID
	offer.Status = domain.OfferStatusMatched
	offer.Price = price
	offer.MatchedAt = matchedAt

	cp := *offer
	return &cp, nil
}

var _ repository.OfferBoard = (*OfferBoard)(nil)
