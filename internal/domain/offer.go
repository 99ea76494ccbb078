package domain

import "time"

// OfferStatus represents where a ride offer is in its lifecycle.
type OfferStatus string

const (
	OfferStatusSeeking   OfferStatus = "SEEKING"
	OfferStatusMatched   OfferStatus = "MATCHED"
	OfferStatusConfirmed OfferStatus = "CONFIRMED"
	OfferStatusCancelled OfferStatus = "CANCELLED"
)

// Terminal reports whether the status admits no further transitions.
func (s OfferStatus) Terminal() bool {
	return s == OfferStatusConfirmed || s == OfferStatusCancelled
}

// Response is a party's answer to a proposed match.
type Response string

const (
	ResponsePending  Response = "PENDING"
	ResponseAccepted Response = "ACCEPTED"
	ResponseRejected Response = "REJECTED"
)

// ValidResponse reports whether s is an actionable response value.
func ValidResponse(s Response) bool {
	return s == ResponseAccepted || s == ResponseRejected
}

// RideOffer is a rider's pending ride request and the trip it becomes.
// At most one non-terminal offer exists per rider at a time.
type RideOffer struct {
	TripID      string
	RiderID     string
	Origin      Place
	Destination Place
	RequestedAt time.Time

	Status          OfferStatus
	MatchedDriverID string
	DriverResponse  Response
	RiderResponse   Response
	Price           float64

	MatchedAt   time.Time
	ConfirmedAt time.Time
	CancelledAt time.Time
	CancelledBy string
	CancelReason string

	// SelectedRoute is filled best-effort from the route provider once
	// the rider confirms.
	SelectedRoute *RouteInfo
}

// IsParty reports whether id is the rider or the matched driver.
func (o *RideOffer) IsParty(id string) bool {
	return id == o.RiderID || (o.MatchedDriverID != "" && id == o.MatchedDriverID)
}

// Counterpart returns the other party's ID, or "" if there is none.
func (o *RideOffer) Counterpart(id string) string {
	if id == o.RiderID {
		return o.MatchedDriverID
	}
	if id == o.MatchedDriverID {
		return o.RiderID
	}
	return ""
}
