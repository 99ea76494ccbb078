package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"greenride/internal/domain"
	"greenride/internal/repository/memory"
	"greenride/internal/service"
)

func newBoardFixture() (*service.BoardService, *service.PresenceService, *MockNotifier, *MockRouteProvider) {
	offers := memory.NewOfferBoard()
	registry := memory.NewPresenceRegistry()
	notifier := NewMockNotifier()
	routes := NewMockRouteProvider()
	board := service.NewBoardService(offers, registry, nil, notifier, routes, service.DefaultMaxDeviationKm, nil)
	presence := service.NewPresenceService(registry, nil)
	return board, presence, notifier, routes
}

func postOffer(t *testing.T, board *service.BoardService, riderID string) *domain.RideOffer {
	t.Helper()
	offer, err := board.Post(context.Background(), service.PostRequest{
		RiderID:     riderID,
		Origin:      domain.Place{Name: "Indiranagar", Coordinate: domain.Coordinate{Lat: 12.9719, Lng: 77.6412}},
		Destination: domain.Place{Name: "Whitefield", Coordinate: domain.Coordinate{Lat: 12.9698, Lng: 77.7500}},
	})
	if err != nil {
		t.Fatalf("post offer: %v", err)
	}
	return offer
}

func driverOnline(t *testing.T, presence *service.PresenceService, driverID string, price float64) {
	t.Helper()
	_, err := presence.SetOnline(context.Background(), service.SetOnlineRequest{
		DriverID: driverID,
		Location: &domain.Coordinate{Lat: 12.9719, Lng: 77.6412},
		Route: &service.DeclaredRouteInput{
			Origin:       domain.Place{Name: "Indiranagar", Coordinate: domain.Coordinate{Lat: 12.9719, Lng: 77.6412}},
			Destination:  domain.Place{Name: "Whitefield", Coordinate: domain.Coordinate{Lat: 12.9698, Lng: 77.7500}},
			PricePerRide: price,
		},
	})
	if err != nil {
		t.Fatalf("driver online: %v", err)
	}
}

func TestPostOffer_SecondActiveOfferRejected(t *testing.T) {
	t.Parallel()

	board, _, _, _ := newBoardFixture()

	postOffer(t, board, "rider-1")

	_, err := board.Post(context.Background(), service.PostRequest{
		RiderID:     "rider-1",
		Origin:      domain.Place{Coordinate: domain.Coordinate{Lat: 12.9, Lng: 77.6}},
		Destination: domain.Place{Coordinate: domain.Coordinate{Lat: 12.8, Lng: 77.7}},
	})
	if !errors.Is(err, service.ErrActiveOfferExists) {
		t.Fatalf("expected ErrActiveOfferExists, got %v", err)
	}
}

// Concurrent posts by the same rider must not both land; the board
// enforces uniqueness atomically with the insert.
func TestPostOffer_ConcurrentDuplicatesSingleWinner(t *testing.T) {
	const posters = 8
	const trials = 25

	for trial := 0; trial < trials; trial++ {
		board, _, _, _ := newBoardFixture()

		var wg sync.WaitGroup
		var mu sync.Mutex
		created := 0
		conflicts := 0

		start := make(chan struct{})
		for i := 0; i < posters; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := board.Post(context.Background(), service.PostRequest{
					RiderID:     "rider-1",
					Origin:      domain.Place{Coordinate: domain.Coordinate{Lat: 12.9719, Lng: 77.6412}},
					Destination: domain.Place{Coordinate: domain.Coordinate{Lat: 12.9698, Lng: 77.7500}},
				})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, service.ErrActiveOfferExists):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		close(start)
		wg.Wait()

		if created != 1 {
			t.Fatalf("trial %d: %d offers created, want exactly 1", trial, created)
		}
		if conflicts != posters-1 {
			t.Fatalf("trial %d: %d conflicts, want %d", trial, conflicts, posters-1)
		}
	}
}

func TestPostOffer_AllowedAgainAfterTerminal(t *testing.T) {
	t.Parallel()

	board, _, _, _ := newBoardFixture()

	offer := postOffer(t, board, "rider-1")
	if _, err := board.Withdraw(context.Background(), offer.TripID, "rider-1"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	postOffer(t, board, "rider-1")
}

func TestListMatchingRoute_OfflineDriverSeesNothing(t *testing.T) {
	t.Parallel()

	board, presence, _, _ := newBoardFixture()
	postOffer(t, board, "rider-1")

	// Driver went online with a route, then offline again.
	driverOnline(t, presence, "driver-1", 100)
	if _, err := presence.SetOffline(context.Background(), "driver-1"); err != nil {
		t.Fatalf("offline: %v", err)
	}

	requests, err := board.ListMatchingRoute(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(requests) != 0 {
		t.Fatalf("offline driver got %d requests, want 0", len(requests))
	}

	// A driver nobody has heard of also sees an empty list, not an error.
	requests, err = board.ListMatchingRoute(context.Background(), "driver-unknown")
	if err != nil {
		t.Fatalf("unexpected error for unknown driver: %v", err)
	}
	if len(requests) != 0 {
		t.Fatalf("unknown driver got %d requests, want 0", len(requests))
	}
}

func TestListMatchingRoute_SortedByScoreAscending(t *testing.T) {
	t.Parallel()

	board, presence, _, _ := newBoardFixture()
	driverOnline(t, presence, "driver-1", 100)

	// Far rider first so insertion order disagrees with score order.
	farOrigin := domain.Coordinate{Lat: 12.9719 + 1.5/111.195, Lng: 77.6412}
	if _, err := board.Post(context.Background(), service.PostRequest{
		RiderID:     "rider-far",
		Origin:      domain.Place{Coordinate: farOrigin},
		Destination: domain.Place{Coordinate: domain.Coordinate{Lat: 12.9698, Lng: 77.7500}},
	}); err != nil {
		t.Fatalf("post far offer: %v", err)
	}
	postOffer(t, board, "rider-near")

	requests, err := board.ListMatchingRoute(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("got %d requests, want 2", len(requests))
	}
	if requests[0].Offer.RiderID != "rider-near" {
		t.Errorf("best match is %s, want rider-near", requests[0].Offer.RiderID)
	}
	if requests[0].Score > requests[1].Score {
		t.Errorf("scores not ascending: %v then %v", requests[0].Score, requests[1].Score)
	}
	if requests[0].PricePerRide != 100 {
		t.Errorf("price = %v, want the driver's declared 100", requests[0].PricePerRide)
	}
}

func TestListMatchingRoute_ExcludesOwnOffer(t *testing.T) {
	t.Parallel()

	board, presence, _, _ := newBoardFixture()
	driverOnline(t, presence, "driver-1", 100)
	postOffer(t, board, "driver-1") // driver moonlighting as a rider

	requests, err := board.ListMatchingRoute(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(requests) != 0 {
		t.Fatalf("driver saw their own offer in dispatch view")
	}
}

func TestDriverRespond_AcceptMatchesAtDeclaredPrice(t *testing.T) {
	t.Parallel()

	board, presence, notifier, _ := newBoardFixture()
	driverOnline(t, presence, "driver-1", 150)
	offer := postOffer(t, board, "rider-1")

	matched, err := board.DriverRespond(context.Background(), offer.TripID, "driver-1", domain.ResponseAccepted)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	if matched.Status != domain.OfferStatusMatched {
		t.Errorf("status = %s, want MATCHED", matched.Status)
	}
	if matched.MatchedDriverID != "driver-1" {
		t.Errorf("matched driver = %s, want driver-1", matched.MatchedDriverID)
	}
	if matched.Price != 150 {
		t.Errorf("price = %v, want 150", matched.Price)
	}
	if matched.MatchedAt.IsZero() {
		t.Error("matched_at not stamped")
	}

	riderInbox := notifier.ForRecipient("rider-1")
	if len(riderInbox) != 1 || riderInbox[0].Kind != domain.NotificationTripMatched {
		t.Fatalf("rider inbox = %+v, want one TRIP_MATCHED", riderInbox)
	}
}

func TestDriverRespond_RejectLeavesOfferOnBoard(t *testing.T) {
	t.Parallel()

	board, presence, _, _ := newBoardFixture()
	driverOnline(t, presence, "driver-1", 100)
	driverOnline(t, presence, "driver-2", 110)
	offer := postOffer(t, board, "rider-1")

	if _, err := board.DriverRespond(context.Background(), offer.TripID, "driver-1", domain.ResponseRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// Another driver can still take it.
	matched, err := board.DriverRespond(context.Background(), offer.TripID, "driver-2", domain.ResponseAccepted)
	if err != nil {
		t.Fatalf("accept after reject: %v", err)
	}
	if matched.MatchedDriverID != "driver-2" {
		t.Errorf("matched driver = %s, want driver-2", matched.MatchedDriverID)
	}
}

func TestDriverRespond_InvalidResponse(t *testing.T) {
	t.Parallel()

	board, presence, _, _ := newBoardFixture()
	driverOnline(t, presence, "driver-1", 100)
	offer := postOffer(t, board, "rider-1")

	if _, err := board.DriverRespond(context.Background(), offer.TripID, "driver-1", domain.Response("MAYBE")); !errors.Is(err, service.ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestRiderRespond_AcceptConfirmsAndAttachesRoute(t *testing.T) {
	t.Parallel()

	board, presence, notifier, routes := newBoardFixture()
	driverOnline(t, presence, "driver-1", 100)
	offer := postOffer(t, board, "rider-1")

	if _, err := board.DriverRespond(context.Background(), offer.TripID, "driver-1", domain.ResponseAccepted); err != nil {
		t.Fatalf("driver accept: %v", err)
	}

	confirmed, err := board.RiderRespond(context.Background(), offer.TripID, "rider-1", domain.ResponseAccepted)
	if err != nil {
		t.Fatalf("rider accept: %v", err)
	}

	if confirmed.Status != domain.OfferStatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", confirmed.Status)
	}
	if confirmed.ConfirmedAt.IsZero() {
		t.Error("confirmed_at not stamped")
	}
	if confirmed.SelectedRoute == nil || confirmed.SelectedRoute.Polyline != "mock_polyline" {
		t.Errorf("route geometry not attached: %+v", confirmed.SelectedRoute)
	}
	if routes.CallCount != 1 {
		t.Errorf("route provider called %d times, want 1", routes.CallCount)
	}

	driverInbox := notifier.ForRecipient("driver-1")
	if len(driverInbox) != 1 || driverInbox[0].Kind != domain.NotificationTripConfirmed {
		t.Fatalf("driver inbox = %+v, want one TRIP_CONFIRMED", driverInbox)
	}
}

func TestRiderRespond_ConfirmSurvivesRouteProviderFailure(t *testing.T) {
	t.Parallel()

	board, presence, _, routes := newBoardFixture()
	routes.Fail = true

	driverOnline(t, presence, "driver-1", 100)
	offer := postOffer(t, board, "rider-1")

	if _, err := board.DriverRespond(context.Background(), offer.TripID, "driver-1", domain.ResponseAccepted); err != nil {
		t.Fatalf("driver accept: %v", err)
	}

	confirmed, err := board.RiderRespond(context.Background(), offer.TripID, "rider-1", domain.ResponseAccepted)
	if err != nil {
		t.Fatalf("confirm must not fail on route lookup: %v", err)
	}
	if confirmed.Status != domain.OfferStatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", confirmed.Status)
	}
	if confirmed.SelectedRoute != nil {
		t.Error("expected no route geometry after provider failure")
	}
}

func TestRiderRespond_RejectReturnsOfferToSeeking(t *testing.T) {
	t.Parallel()

	board, presence, notifier, _ := newBoardFixture()
	driverOnline(t, presence, "driver-1", 100)
	driverOnline(t, presence, "driver-2", 90)
	offer := postOffer(t, board, "rider-1")

	if _, err := board.DriverRespond(context.Background(), offer.TripID, "driver-1", domain.ResponseAccepted); err != nil {
		t.Fatalf("driver accept: %v", err)
	}

	reopened, err := board.RiderRespond(context.Background(), offer.TripID, "rider-1", domain.ResponseRejected)
	if err != nil {
		t.Fatalf("rider reject: %v", err)
	}

	if reopened.Status != domain.OfferStatusSeeking {
		t.Errorf("status = %s, want SEEKING", reopened.Status)
	}
	if reopened.MatchedDriverID != "" {
		t.Errorf("matched driver = %q, want cleared", reopened.MatchedDriverID)
	}
	if reopened.DriverResponse != domain.ResponsePending || reopened.RiderResponse != domain.ResponsePending {
		t.Errorf("responses = %s/%s, want PENDING/PENDING", reopened.DriverResponse, reopened.RiderResponse)
	}

	declined := notifier.ForRecipient("driver-1")
	if len(declined) != 1 || declined[0].Kind != domain.NotificationTripDeclined {
		t.Fatalf("driver inbox = %+v, want one TRIP_DECLINED", declined)
	}

	// The reopened offer is claimable by another driver.
	matched, err := board.DriverRespond(context.Background(), offer.TripID, "driver-2", domain.ResponseAccepted)
	if err != nil {
		t.Fatalf("second accept: %v", err)
	}
	if matched.Price != 90 {
		t.Errorf("price = %v, want the second driver's 90", matched.Price)
	}
}

func TestDriverWithdraw_ReturnsOfferToSeeking(t *testing.T) {
	t.Parallel()

	board, presence, notifier, _ := newBoardFixture()
	driverOnline(t, presence, "driver-1", 100)
	driverOnline(t, presence, "driver-2", 90)
	offer := postOffer(t, board, "rider-1")

	if _, err := board.DriverRespond(context.Background(), offer.TripID, "driver-1", domain.ResponseAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}

	reopened, err := board.DriverWithdraw(context.Background(), offer.TripID, "driver-1")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	if reopened.Status != domain.OfferStatusSeeking {
		t.Errorf("status = %s, want SEEKING", reopened.Status)
	}
	if reopened.MatchedDriverID != "" {
		t.Errorf("matched driver = %q, want cleared", reopened.MatchedDriverID)
	}
	if reopened.DriverResponse != domain.ResponsePending || reopened.RiderResponse != domain.ResponsePending {
		t.Errorf("responses = %s/%s, want PENDING/PENDING", reopened.DriverResponse, reopened.RiderResponse)
	}

	declined := notifier.ForRecipient("rider-1")
	var sawDeclined bool
	for _, n := range declined {
		if n.Kind == domain.NotificationTripDeclined {
			sawDeclined = true
		}
	}
	if !sawDeclined {
		t.Fatalf("rider inbox = %+v, want a TRIP_DECLINED", declined)
	}

	// The reopened offer is claimable by another driver.
	matched, err := board.DriverRespond(context.Background(), offer.TripID, "driver-2", domain.ResponseAccepted)
	if err != nil {
		t.Fatalf("accept after withdraw: %v", err)
	}
	if matched.MatchedDriverID != "driver-2" || matched.Price != 90 {
		t.Errorf("rematch = %s at %v, want driver-2 at 90", matched.MatchedDriverID, matched.Price)
	}
}

func TestDriverWithdraw_MatchedDriverOnly(t *testing.T) {
	t.Parallel()

	board, presence, _, _ := newBoardFixture()
	driverOnline(t, presence, "driver-1", 100)
	driverOnline(t, presence, "driver-2", 90)
	offer := postOffer(t, board, "rider-1")

	if _, err := board.DriverRespond(context.Background(), offer.TripID, "driver-1", domain.ResponseAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := board.DriverWithdraw(context.Background(), offer.TripID, "driver-2"); !errors.Is(err, service.ErrNotTripParticipant) {
		t.Fatalf("expected ErrNotTripParticipant, got %v", err)
	}
}

func TestDriverWithdraw_ConfirmedTripRefused(t *testing.T) {
	t.Parallel()

	board, presence, _, _ := newBoardFixture()
	driverOnline(t, presence, "driver-1", 100)
	offer := postOffer(t, board, "rider-1")

	if _, err := board.DriverRespond(context.Background(), offer.TripID, "driver-1", domain.ResponseAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := board.RiderRespond(context.Background(), offer.TripID, "rider-1", domain.ResponseAccepted); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := board.DriverWithdraw(context.Background(), offer.TripID, "driver-1"); !errors.Is(err, service.ErrOfferNotMatched) {
		t.Fatalf("expected ErrOfferNotMatched, got %v", err)
	}
}

func TestRiderRespond_RequiresMatchedOffer(t *testing.T) {
	t.Parallel()

	board, _, _, _ := newBoardFixture()
	offer := postOffer(t, board, "rider-1")

	if _, err := board.RiderRespond(context.Background(), offer.TripID, "rider-1", domain.ResponseAccepted); !errors.Is(err, service.ErrOfferNotMatched) {
		t.Fatalf("expected ErrOfferNotMatched, got %v", err)
	}
}

func TestRiderRespond_OwnerOnly(t *testing.T) {
	t.Parallel()

	board, presence, _, _ := newBoardFixture()
	driverOnline(t, presence, "driver-1", 100)
	offer := postOffer(t, board, "rider-1")

	if _, err := board.DriverRespond(context.Background(), offer.TripID, "driver-1", domain.ResponseAccepted); err != nil {
		t.Fatalf("driver accept: %v", err)
	}

	if _, err := board.RiderRespond(context.Background(), offer.TripID, "rider-2", domain.ResponseAccepted); !errors.Is(err, service.ErrNotOfferOwner) {
		t.Fatalf("expected ErrNotOfferOwner, got %v", err)
	}
}

func TestWithdraw_NotifiesMatchedDriver(t *testing.T) {
	t.Parallel()

	board, presence, notifier, _ := newBoardFixture()
	driverOnline(t, presence, "driver-1", 100)
	offer := postOffer(t, board, "rider-1")

	if _, err := board.DriverRespond(context.Background(), offer.TripID, "driver-1", domain.ResponseAccepted); err != nil {
		t.Fatalf("driver accept: %v", err)
	}

	withdrawn, err := board.Withdraw(context.Background(), offer.TripID, "rider-1")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if withdrawn.Status != domain.OfferStatusCancelled {
		t.Errorf("status = %s, want CANCELLED", withdrawn.Status)
	}

	cancelled := notifier.ForRecipient("driver-1")
	var sawCancel bool
	for _, n := range cancelled {
		if n.Kind == domain.NotificationTripCancelled {
			sawCancel = true
		}
	}
	if !sawCancel {
		t.Fatalf("driver inbox = %+v, want a TRIP_CANCELLED", cancelled)
	}
}

func TestListForDriver_RadiusFilterNearestFirst(t *testing.T) {
	t.Parallel()

	board, presence, _, _ := newBoardFixture()
	driverOnline(t, presence, "driver-1", 100)

	base := domain.Coordinate{Lat: 12.9719, Lng: 77.6412}
	for _, tc := range []struct {
		rider string
		km    float64
	}{
		{"rider-3km", 3},
		{"rider-1km", 1},
		{"rider-40km", 40},
	} {
		origin := domain.Coordinate{Lat: base.Lat + tc.km/111.195, Lng: base.Lng}
		if _, err := board.Post(context.Background(), service.PostRequest{
			RiderID:     tc.rider,
			Origin:      domain.Place{Coordinate: origin},
			Destination: domain.Place{Coordinate: domain.Coordinate{Lat: 12.9698, Lng: 77.7500}},
		}); err != nil {
			t.Fatalf("post %s: %v", tc.rider, err)
		}
	}

	offers, err := board.ListForDriver(context.Background(), "driver-1", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("got %d offers within 5km, want 2", len(offers))
	}
	if offers[0].Offer.RiderID != "rider-1km" || offers[1].Offer.RiderID != "rider-3km" {
		t.Errorf("order = %s, %s; want rider-1km then rider-3km", offers[0].Offer.RiderID, offers[1].Offer.RiderID)
	}
}
