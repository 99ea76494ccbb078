package tests

import (
	"context"
	"errors"
	"testing"

	"greenride/internal/domain"
	"greenride/internal/repository/memory"
	"greenride/internal/service"
)

type tripFixture struct {
	board    *service.BoardService
	presence *service.PresenceService
	trips    *service.TripService
	live     *service.LiveLocationService
	notifier *MockNotifier
}

func newTripFixture() *tripFixture {
	offers := memory.NewOfferBoard()
	registry := memory.NewPresenceRegistry()
	notifier := NewMockNotifier()
	liveStore := NewMockLiveStore()

	return &tripFixture{
		board:    service.NewBoardService(offers, registry, nil, notifier, nil, service.DefaultMaxDeviationKm, nil),
		presence: service.NewPresenceService(registry, nil),
		trips:    service.NewTripService(offers, registry, liveStore, nil, notifier, nil),
		live:     service.NewLiveLocationService(liveStore),
		notifier: notifier,
	}
}

// matchedOffer posts an offer and drives it to Matched.
func (f *tripFixture) matchedOffer(t *testing.T) *domain.RideOffer {
	t.Helper()
	driverOnline(t, f.presence, "driver-1", 100)
	offer := postOffer(t, f.board, "rider-1")
	matched, err := f.board.DriverRespond(context.Background(), offer.TripID, "driver-1", domain.ResponseAccepted)
	if err != nil {
		t.Fatalf("driver accept: %v", err)
	}
	return matched
}

func TestCancel_RequiresReason(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	offer := f.matchedOffer(t)

	for _, reason := range []string{"", "   "} {
		if _, err := f.trips.Cancel(context.Background(), offer.TripID, "rider-1", reason); !errors.Is(err, service.ErrEmptyCancelReason) {
			t.Errorf("reason %q: expected ErrEmptyCancelReason, got %v", reason, err)
		}
	}
}

func TestCancel_PartyOnly(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	offer := f.matchedOffer(t)

	if _, err := f.trips.Cancel(context.Background(), offer.TripID, "stranger", "change of plans"); !errors.Is(err, service.ErrNotTripParticipant) {
		t.Fatalf("expected ErrNotTripParticipant, got %v", err)
	}
}

func TestCancel_ByDriverNotifiesRider(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	offer := f.matchedOffer(t)

	cancelled, err := f.trips.Cancel(context.Background(), offer.TripID, "driver-1", "vehicle breakdown")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if cancelled.Status != domain.OfferStatusCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}
	if cancelled.CancelledBy != "driver-1" {
		t.Errorf("cancelled_by = %s, want driver-1", cancelled.CancelledBy)
	}
	if cancelled.CancelReason != "vehicle breakdown" {
		t.Errorf("reason = %q", cancelled.CancelReason)
	}

	var sawCancel bool
	for _, n := range f.notifier.ForRecipient("rider-1") {
		if n.Kind == domain.NotificationTripCancelled && n.Reason == "vehicle breakdown" {
			sawCancel = true
		}
	}
	if !sawCancel {
		t.Fatal("rider never notified of the cancellation with its reason")
	}
}

func TestCancel_TerminalTripRejected(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	offer := f.matchedOffer(t)

	if _, err := f.trips.Cancel(context.Background(), offer.TripID, "rider-1", "first"); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if _, err := f.trips.Cancel(context.Background(), offer.TripID, "driver-1", "second"); !errors.Is(err, service.ErrOfferTerminal) {
		t.Fatalf("expected ErrOfferTerminal, got %v", err)
	}
}

func TestCancel_ConfirmedTripCancellable(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	offer := f.matchedOffer(t)

	if _, err := f.board.RiderRespond(context.Background(), offer.TripID, "rider-1", domain.ResponseAccepted); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	cancelled, err := f.trips.Cancel(context.Background(), offer.TripID, "driver-1", "vehicle breakdown")
	if err != nil {
		t.Fatalf("cancel of confirmed trip: %v", err)
	}
	if cancelled.Status != domain.OfferStatusCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}

	var sawCancel bool
	for _, n := range f.notifier.ForRecipient("rider-1") {
		if n.Kind == domain.NotificationTripCancelled && n.Reason == "vehicle breakdown" {
			sawCancel = true
		}
	}
	if !sawCancel {
		t.Fatal("rider never notified that the confirmed trip was cancelled")
	}
}

func TestLiveDriver_RiderSeesDriverPosition(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	offer := f.matchedOffer(t)

	if _, err := f.live.Update(context.Background(), "driver-1", domain.Coordinate{Lat: 12.98, Lng: 77.65}); err != nil {
		t.Fatalf("live update: %v", err)
	}

	view, err := f.trips.LiveDriver(context.Background(), offer.TripID, "rider-1")
	if err != nil {
		t.Fatalf("live driver: %v", err)
	}
	if view.DriverID != "driver-1" {
		t.Errorf("driver = %s", view.DriverID)
	}
	if view.Location == nil || view.Location.Coordinate.Lat != 12.98 {
		t.Errorf("location = %+v, want the pushed position", view.Location)
	}
	if view.Route == nil || view.PricePerRide != 100 {
		t.Errorf("route/price not filled: %+v, %v", view.Route, view.PricePerRide)
	}
}

func TestLiveDriver_OnlyOwnerBeforeAnyFeed(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	offer := f.matchedOffer(t)

	if _, err := f.trips.LiveDriver(context.Background(), offer.TripID, "rider-2"); !errors.Is(err, service.ErrNotOfferOwner) {
		t.Fatalf("expected ErrNotOfferOwner, got %v", err)
	}

	// Owner with no feed yet still gets the view, just without a
	// position.
	view, err := f.trips.LiveDriver(context.Background(), offer.TripID, "rider-1")
	if err != nil {
		t.Fatalf("live driver: %v", err)
	}
	if view.Location != nil {
		t.Errorf("expected no location before any push, got %+v", view.Location)
	}
}

func TestLiveDriver_RequiresMatch(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	offer := postOffer(t, f.board, "rider-1")

	if _, err := f.trips.LiveDriver(context.Background(), offer.TripID, "rider-1"); !errors.Is(err, service.ErrNoMatchedDriver) {
		t.Fatalf("expected ErrNoMatchedDriver, got %v", err)
	}
}

func TestLiveRider_MatchedDriverOnly(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	offer := f.matchedOffer(t)

	if _, err := f.live.Update(context.Background(), "rider-1", domain.Coordinate{Lat: 12.97, Lng: 77.64}); err != nil {
		t.Fatalf("live update: %v", err)
	}

	view, err := f.trips.LiveRider(context.Background(), offer.TripID, "driver-1")
	if err != nil {
		t.Fatalf("live rider: %v", err)
	}
	if view.RiderID != "rider-1" || view.Location == nil {
		t.Errorf("view = %+v", view)
	}

	if _, err := f.trips.LiveRider(context.Background(), offer.TripID, "driver-2"); !errors.Is(err, service.ErrNotTripParticipant) {
		t.Fatalf("expected ErrNotTripParticipant, got %v", err)
	}
}
