package domain

import "time"

// TripRecord is the archived form of an offer that reached a terminal
// state. Records feed trip history and the analytics summary; they are
// never read back into the live matching flow.
type TripRecord struct {
	TripID          string
	RiderID         string
	DriverID        string
	OriginName      string
	OriginLat       float64
	OriginLng       float64
	DestinationName string
	DestinationLat  float64
	DestinationLng  float64
	Status          OfferStatus
	Price           float64
	DistanceMeters  int
	DurationSeconds int
	RequestedAt     time.Time
	MatchedAt       time.Time
	ConfirmedAt     time.Time
	CancelledAt     time.Time
	CancelledBy     string
	CancelReason    string
}

// TripSummary is the read-side reduction over a user's archived trips.
type TripSummary struct {
	TotalTrips      int     `json:"total_trips"`
	ConfirmedTrips  int     `json:"confirmed_trips"`
	CancelledTrips  int     `json:"cancelled_trips"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	TotalHours      float64 `json:"total_hours"`
	TotalSpend      float64 `json:"total_spend"`
}
