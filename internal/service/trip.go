package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"greenride/internal/domain"
	"greenride/internal/redis"
	"greenride/internal/repository"
)

// TripService covers the post-match trip surface: cancellation with a
// mandatory reason, and the live views each party gets of the other.
type TripService struct {
	offers   repository.OfferBoard
	presence repository.PresenceRegistry
	feed     redis.LiveLocationStoreInterface
	archive  repository.TripArchive
	notifier Notifier
	logger   *slog.Logger
}

// NewTripService creates a TripService. Feed, archive and notifier may
// be nil; the corresponding features degrade gracefully.
func NewTripService(
	offers repository.OfferBoard,
	presence repository.PresenceRegistry,
	feed redis.LiveLocationStoreInterface,
	archive repository.TripArchive,
	notifier Notifier,
	logger *slog.Logger,
) *TripService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TripService{
		offers:   offers,
		presence: presence,
		feed:     feed,
		archive:  archive,
		notifier: notifier,
		logger:   logger,
	}
}

// Cancel moves a trip to Cancelled. The caller must be a party to the
// trip and must give a non-empty reason; the counterpart is notified
// with that reason. Confirmed trips are cancellable too; only an
// already cancelled trip stays put.
func (s *TripService) Cancel(ctx context.Context, tripID, callerID, reason string) (*domain.RideOffer, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if strings.TrimSpace(reason) == "" {
		return nil, ErrEmptyCancelReason
	}

	offer, err := s.offers.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !offer.IsParty(callerID) {
		return nil, ErrNotTripParticipant
	}
	if offer.Status == domain.OfferStatusCancelled {
		return nil, ErrOfferTerminal
	}

	counterpart := offer.Counterpart(callerID)

	offer.Status = domain.OfferStatusCancelled
	offer.CancelledAt = time.Now()
	offer.CancelledBy = callerID
	offer.CancelReason = strings.TrimSpace(reason)

	if err := s.offers.Update(ctx, offer); err != nil {
		return nil, err
	}

	s.logger.Info("trip cancelled",
		slog.String("trip_id", offer.TripID),
		slog.String("cancelled_by", callerID),
	)

	if s.archive != nil {
		if err := s.archive.Save(ctx, tripRecordFromOffer(offer)); err != nil {
			s.logger.Error("trip archive write failed",
				slog.String("trip_id", offer.TripID),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.notifier != nil && counterpart != "" {
		n := &domain.Notification{
			RecipientID: counterpart,
			Kind:        domain.NotificationTripCancelled,
			TripID:      offer.TripID,
			Message:     "The trip was cancelled by the other party.",
			Reason:      offer.CancelReason,
		}
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.Error("notification delivery failed",
				slog.String("trip_id", offer.TripID),
				slog.String("recipient_id", counterpart),
				slog.String("error", err.Error()),
			)
		}
	}

	return offer, nil
}

// LiveDriverView is what the rider sees of their matched driver.
type LiveDriverView struct {
	DriverID     string                `json:"driver_id"`
	Location     *domain.LiveLocation  `json:"location,omitempty"`
	Route        *domain.DeclaredRoute `json:"route,omitempty"`
	PricePerRide float64               `json:"price_per_ride"`
}

// LiveDriver returns the matched driver's latest reported position and
// declared route. Only the trip's rider may call it, and only once a
// driver has accepted.
func (s *TripService) LiveDriver(ctx context.Context, tripID, riderID string) (*LiveDriverView, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	offer, err := s.offers.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if offer.RiderID != riderID {
		return nil, ErrNotOfferOwner
	}
	if offer.MatchedDriverID == "" {
		return nil, ErrNoMatchedDriver
	}

	view := &LiveDriverView{DriverID: offer.MatchedDriverID}

	if presence, err := s.presence.Get(ctx, offer.MatchedDriverID); err == nil {
		view.Route = presence.Route
		view.PricePerRide = routePrice(presence.Route)
	}
	if s.feed != nil {
		if loc, err := s.feed.Get(ctx, offer.MatchedDriverID); err == nil {
			view.Location = loc
		}
	}
	return view, nil
}

// LiveRiderView is what the driver sees of their matched rider.
type LiveRiderView struct {
	RiderID     string               `json:"rider_id"`
	Location    *domain.LiveLocation `json:"location,omitempty"`
	Origin      domain.Place         `json:"origin"`
	Destination domain.Place         `json:"destination"`
}

// LiveRider returns the rider's latest reported position together with
// the pickup and dropoff. Only the matched driver may call it.
func (s *TripService) LiveRider(ctx context.Context, tripID, driverID string) (*LiveRiderView, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	offer, err := s.offers.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if offer.MatchedDriverID == "" || offer.MatchedDriverID != driverID {
		return nil, ErrNotTripParticipant
	}

	view := &LiveRiderView{
		RiderID:     offer.RiderID,
		Origin:      offer.Origin,
		Destination: offer.Destination,
	}
	if s.feed != nil {
		if loc, err := s.feed.Get(ctx, offer.RiderID); err == nil {
			view.Location = loc
		}
	}
	return view, nil
}
