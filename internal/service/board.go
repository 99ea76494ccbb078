package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"greenride/internal/domain"
	"greenride/internal/geo"
	"greenride/internal/observability"
	"greenride/internal/repository"
)

// Notifier delivers a notification to its recipient's inbox.
type Notifier interface {
	Notify(ctx context.Context, n *domain.Notification) error
}

// RouteProvider resolves driving geometry between two points. Failures
// are tolerated everywhere it is used; a trip without geometry is still
// a valid trip.
type RouteProvider interface {
	Route(ctx context.Context, origin, destination domain.Coordinate) (*domain.RouteInfo, error)
}

// BoardService manages the ride request board: posting, the dispatch
// views drivers see, and both sides of the accept/confirm handshake.
type BoardService struct {
	offers         repository.OfferBoard
	presence       repository.PresenceRegistry
	archive        repository.TripArchive
	notifier       Notifier
	routes         RouteProvider
	maxDeviationKm float64
	logger         *slog.Logger
}

// NewBoardService creates a BoardService. Archive, notifier and routes
// may be nil; the corresponding side effects are then skipped.
func NewBoardService(
	offers repository.OfferBoard,
	presence repository.PresenceRegistry,
	archive repository.TripArchive,
	notifier Notifier,
	routes RouteProvider,
	maxDeviationKm float64,
	logger *slog.Logger,
) *BoardService {
	if maxDeviationKm <= 0 {
		maxDeviationKm = DefaultMaxDeviationKm
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BoardService{
		offers:         offers,
		presence:       presence,
		archive:        archive,
		notifier:       notifier,
		routes:         routes,
		maxDeviationKm: maxDeviationKm,
		logger:         logger,
	}
}

// PostRequest is the payload for posting a new ride offer.
type PostRequest struct {
	RiderID     string
	Origin      domain.Place
	Destination domain.Place
}

// Post publishes a new ride offer on the board. A rider can have at
// most one non-terminal offer at a time.
func (s *BoardService) Post(ctx context.Context, req PostRequest) (*domain.RideOffer, error) {
	if req.RiderID == "" {
		return nil, ErrInvalidRiderID
	}
	if !req.Origin.Coordinate.Valid() || !req.Destination.Coordinate.Valid() {
		return nil, ErrInvalidCoordinate
	}

	offer := &domain.RideOffer{
		TripID:         uuid.New().String(),
		RiderID:        req.RiderID,
		Origin:         req.Origin,
		Destination:    req.Destination,
		RequestedAt:    time.Now(),
		Status:         domain.OfferStatusSeeking,
		DriverResponse: domain.ResponsePending,
		RiderResponse:  domain.ResponsePending,
	}

	// Uniqueness is enforced by the board itself, atomically with the
	// insert.
	if err := s.offers.Create(ctx, offer); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrActiveOfferExists
		}
		return nil, err
	}

	observability.OffersPostedTotal.Inc()
	s.logger.Info("ride offer posted",
		slog.String("trip_id", offer.TripID),
		slog.String("rider_id", offer.RiderID),
	)
	return offer, nil
}

// ActiveForRider returns the rider's current non-terminal offer.
func (s *BoardService) ActiveForRider(ctx context.Context, riderID string) (*domain.RideOffer, error) {
	if riderID == "" {
		return nil, ErrInvalidRiderID
	}
	return s.offers.ActiveByRider(ctx, riderID)
}

// Get retrieves an offer. Only the rider or the matched driver may see
// it.
func (s *BoardService) Get(ctx context.Context, tripID, callerID string) (*domain.RideOffer, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	offer, err := s.offers.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !offer.IsParty(callerID) {
		return nil, ErrNotTripParticipant
	}
	return offer, nil
}

// Withdraw takes the rider's own offer off the board. Allowed from
// Seeking or Matched; a matched driver is told the request is gone.
func (s *BoardService) Withdraw(ctx context.Context, tripID, riderID string) (*domain.RideOffer, error) {
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
	if offer.Status.Terminal() {
		return nil, ErrOfferTerminal
	}

	counterpart := offer.MatchedDriverID

	offer.Status = domain.OfferStatusCancelled
	offer.CancelledAt = time.Now()
	offer.CancelledBy = riderID
	offer.CancelReason = "withdrawn by rider"

	if err := s.offers.Update(ctx, offer); err != nil {
		return nil, err
	}

	s.archiveOffer(ctx, offer)
	if counterpart != "" {
		s.notify(ctx, &domain.Notification{
			RecipientID: counterpart,
			Kind:        domain.NotificationTripCancelled,
			TripID:      offer.TripID,
			Message:     "The rider withdrew the ride request.",
			Reason:      offer.CancelReason,
		})
	}
	return offer, nil
}

// AvailableOffer is one board entry as seen by a browsing driver.
type AvailableOffer struct {
	Offer      *domain.RideOffer
	DistanceKm float64
}

// ListForDriver returns open offers whose pickup is within radiusKm of
// the driver's current location, nearest first. The driver must have a
// known location; their own posted offers are never shown back to them.
func (s *BoardService) ListForDriver(ctx context.Context, driverID string, radiusKm float64) ([]AvailableOffer, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if radiusKm <= 0 {
		return nil, ErrInvalidRadius
	}

	presence, err := s.presence.Get(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if presence.Location == nil {
		return nil, ErrInvalidCoordinate
	}

	seeking, err := s.offers.ListSeeking(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]AvailableOffer, 0, len(seeking))
	for _, offer := range seeking {
		if offer.RiderID == driverID {
			continue
		}
		d := geo.DistanceKm(*presence.Location, offer.Origin.Coordinate)
		if d > radiusKm {
			continue
		}
		result = append(result, AvailableOffer{Offer: offer, DistanceKm: d})
	}
	slices.SortFunc(result, func(a, b AvailableOffer) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})
	return result, nil
}

// IncomingRequest is an open offer that lies along the driver's
// declared route, with the deviation breakdown behind the decision.
type IncomingRequest struct {
	Offer                  *domain.RideOffer
	OriginDeviationKm      float64
	DestinationDeviationKm float64
	Score                  float64
	MatchPercent           float64
	PricePerRide           float64
}

// ListMatchingRoute returns the driver's dispatch view: open offers
// compatible with their declared route, best match first. An offline
// driver or one with no route on record simply sees an empty list.
func (s *BoardService) ListMatchingRoute(ctx context.Context, driverID string) ([]IncomingRequest, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	presence, err := s.presence.Get(ctx, driverID)
	if errors.Is(err, repository.ErrNotFound) {
		return []IncomingRequest{}, nil
	} else if err != nil {
		return nil, err
	}
	if !presence.MatchCandidate() {
		return []IncomingRequest{}, nil
	}

	seeking, err := s.offers.ListSeeking(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]IncomingRequest, 0, len(seeking))
	for _, offer := range seeking {
		if offer.RiderID == driverID {
			continue
		}
		ok, match, err := MatchRoute(presence.Route, offer.Origin.Coordinate, offer.Destination.Coordinate, s.maxDeviationKm)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		result = append(result, IncomingRequest{
			Offer:                  offer,
			OriginDeviationKm:      match.OriginDeviationKm,
			DestinationDeviationKm: match.DestinationDeviationKm,
			Score:                  match.Score,
			MatchPercent:           MatchPercent(match.Score),
			PricePerRide:           presence.Route.PricePerRide,
		})
	}
	slices.SortFunc(result, func(a, b IncomingRequest) int {
		return cmp.Compare(a.Score, b.Score)
	})
	return result, nil
}

// DriverRespond records a driver's answer to an open offer.
//
// Accepting is the race: of all drivers answering the same offer,
// exactly one wins the atomic claim and the offer moves to Matched at
// that driver's declared price. Everyone else gets
// ErrOfferNoLongerAvailable. A rejection leaves the offer untouched on
// the board for other drivers.
func (s *BoardService) DriverRespond(ctx context.Context, tripID, driverID string, response domain.Response) (*domain.RideOffer, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if !domain.ValidResponse(response) {
		return nil, ErrInvalidResponse
	}

	if response == domain.ResponseRejected {
		offer, err := s.offers.Get(ctx, tripID)
		if err != nil {
			return nil, err
		}
		if offer.Status != domain.OfferStatusSeeking || offer.DriverResponse != domain.ResponsePending {
			return nil, ErrOfferNoLongerAvailable
		}
		return offer, nil
	}

	presence, err := s.presence.Get(ctx, driverID)
	if err != nil {
		return nil, err
	}

	offer, err := s.offers.AcceptDriver(ctx, tripID, driverID, routePrice(presence.Route), time.Now())
	if errors.Is(err, repository.ErrConflict) {
		observability.AcceptConflictsTotal.Inc()
		return nil, ErrOfferNoLongerAvailable
	} else if err != nil {
		return nil, err
	}

	observability.MatchesTotal.Inc()
	s.logger.Info("driver accepted ride offer",
		slog.String("trip_id", offer.TripID),
		slog.String("driver_id", driverID),
	)
	s.notify(ctx, &domain.Notification{
		RecipientID: offer.RiderID,
		Kind:        domain.NotificationTripMatched,
		TripID:      offer.TripID,
		Message:     "A driver accepted your ride request.",
	})
	return offer, nil
}

// DriverWithdraw backs the matched driver out of an offer they already
// accepted, before the rider confirms. The match is cleared and the
// offer re-enters the pool in Seeking with both responses reset; the
// rider is told the driver is gone.
func (s *BoardService) DriverWithdraw(ctx context.Context, tripID, driverID string) (*domain.RideOffer, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	offer, err := s.offers.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if offer.MatchedDriverID != driverID {
		return nil, ErrNotTripParticipant
	}
	if offer.Status != domain.OfferStatusMatched {
		// A confirmed trip is abandoned through Cancel, with a reason.
		return nil, ErrOfferNotMatched
	}

	offer.Status = domain.OfferStatusSeeking
	offer.MatchedDriverID = ""
	offer.DriverResponse = domain.ResponsePending
	offer.RiderResponse = domain.ResponsePending
	offer.Price = 0
	offer.MatchedAt = time.Time{}

	if err := s.offers.Update(ctx, offer); err != nil {
		return nil, err
	}

	s.logger.Info("driver withdrew from matched offer",
		slog.String("trip_id", offer.TripID),
		slog.String("driver_id", driverID),
	)
	s.notify(ctx, &domain.Notification{
		RecipientID: offer.RiderID,
		Kind:        domain.NotificationTripDeclined,
		TripID:      offer.TripID,
		Message:     "The driver backed out; your request is open again.",
	})
	return offer, nil
}

// RiderRespond records the rider's answer to the matched driver.
//
// Accepting confirms the trip; route geometry is attached best-effort
// and the record lands in the archive. Rejecting clears the match and
// puts the offer back on the board in Seeking, with both responses
// reset to Pending.
func (s *BoardService) RiderRespond(ctx context.Context, tripID, riderID string, response domain.Response) (*domain.RideOffer, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if !domain.ValidResponse(response) {
		return nil, ErrInvalidResponse
	}

	offer, err := s.offers.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if offer.RiderID != riderID {
		return nil, ErrNotOfferOwner
	}
	if offer.Status.Terminal() {
		return nil, ErrOfferTerminal
	}
	if offer.Status != domain.OfferStatusMatched || offer.DriverResponse != domain.ResponseAccepted {
		return nil, ErrOfferNotMatched
	}

	driverID := offer.MatchedDriverID

	if response == domain.ResponseRejected {
		offer.Status = domain.OfferStatusSeeking
		offer.MatchedDriverID = ""
		offer.DriverResponse = domain.ResponsePending
		offer.RiderResponse = domain.ResponsePending
		offer.Price = 0
		offer.MatchedAt = time.Time{}

		if err := s.offers.Update(ctx, offer); err != nil {
			return nil, err
		}
		s.notify(ctx, &domain.Notification{
			RecipientID: driverID,
			Kind:        domain.NotificationTripDeclined,
			TripID:      offer.TripID,
			Message:     "The rider declined the match; the request is open again.",
		})
		return offer, nil
	}

	offer.RiderResponse = domain.ResponseAccepted
	offer.Status = domain.OfferStatusConfirmed
	offer.ConfirmedAt = time.Now()
	s.attachRoute(ctx, offer)

	if err := s.offers.Update(ctx, offer); err != nil {
		return nil, err
	}

	s.archiveOffer(ctx, offer)
	s.notify(ctx, &domain.Notification{
		RecipientID: driverID,
		Kind:        domain.NotificationTripConfirmed,
		TripID:      offer.TripID,
		Message:     fmt.Sprintf("The rider confirmed the trip to %s.", offer.Destination.Name),
	})
	return offer, nil
}

// attachRoute asks the route provider for geometry. A provider failure
// only costs the trip its polyline, never the confirmation.
func (s *BoardService) attachRoute(ctx context.Context, offer *domain.RideOffer) {
	if s.routes == nil {
		return
	}
	info, err := s.routes.Route(ctx, offer.Origin.Coordinate, offer.Destination.Coordinate)
	if err != nil {
		s.logger.Warn("route lookup failed",
			slog.String("trip_id", offer.TripID),
			slog.String("error", err.Error()),
		)
		return
	}
	offer.SelectedRoute = info
}

func (s *BoardService) archiveOffer(ctx context.Context, offer *domain.RideOffer) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Save(ctx, tripRecordFromOffer(offer)); err != nil {
		s.logger.Error("trip archive write failed",
			slog.String("trip_id", offer.TripID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *BoardService) notify(ctx context.Context, n *domain.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error("notification delivery failed",
			slog.String("trip_id", n.TripID),
			slog.String("recipient_id", n.RecipientID),
			slog.String("error", err.Error()),
		)
	}
}

func tripRecordFromOffer(offer *domain.RideOffer) *domain.TripRecord {
	record := &domain.TripRecord{
		TripID:          offer.TripID,
		RiderID:         offer.RiderID,
		DriverID:        offer.MatchedDriverID,
		OriginName:      offer.Origin.Name,
		OriginLat:       offer.Origin.Coordinate.Lat,
		OriginLng:       offer.Origin.Coordinate.Lng,
		DestinationName: offer.Destination.Name,
		DestinationLat:  offer.Destination.Coordinate.Lat,
		DestinationLng:  offer.Destination.Coordinate.Lng,
		Status:          offer.Status,
		Price:           offer.Price,
		RequestedAt:     offer.RequestedAt,
		MatchedAt:       offer.MatchedAt,
		ConfirmedAt:     offer.ConfirmedAt,
		CancelledAt:     offer.CancelledAt,
		CancelledBy:     offer.CancelledBy,
		CancelReason:    offer.CancelReason,
	}
	if offer.SelectedRoute != nil {
		record.DistanceMeters = offer.SelectedRoute.DistanceMeters
		record.DurationSeconds = offer.SelectedRoute.DurationSeconds
	}
	return record
}
