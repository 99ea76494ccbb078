package service

import "errors"

var (
	// ErrInvalidDriverID is returned when the driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidRiderID is returned when the rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidTripID is returned when the trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidSubjectID is returned when a live-location subject ID is
	// empty.
	ErrInvalidSubjectID = errors.New("invalid subject id")

	// ErrInvalidCoordinate is returned when a coordinate is out of range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrInvalidRadius is returned when a search radius is not positive.
	ErrInvalidRadius = errors.New("invalid search radius")

	// ErrInvalidDeviation is returned when the configured max deviation
	// is not positive.
	ErrInvalidDeviation = errors.New("max deviation must be positive")

	// ErrInvalidResponse is returned when a response is neither accepted
	// nor rejected.
	ErrInvalidResponse = errors.New("response must be accepted or rejected")

	// ErrInvalidPrice is returned when a declared route price is negative.
	ErrInvalidPrice = errors.New("price must not be negative")

	// ErrEmptyCancelReason is returned when cancelling without a reason.
	ErrEmptyCancelReason = errors.New("cancellation reason is required")

	// ErrActiveOfferExists is returned when a rider posts a second offer
	// while one is still in flight.
	ErrActiveOfferExists = errors.New("rider already has an active ride request")

	// ErrOfferNoLongerAvailable is returned to the loser of the accept
	// race and to anyone responding to an offer past Seeking.
	ErrOfferNoLongerAvailable = errors.New("ride request is no longer available")

	// ErrOfferNotMatched is returned when a rider responds to an offer
	// that has no accepted driver.
	ErrOfferNotMatched = errors.New("offer has no matched driver")

	// ErrOfferTerminal is returned when mutating a confirmed or
	// cancelled offer.
	ErrOfferTerminal = errors.New("offer already reached a terminal state")

	// ErrNotOfferOwner is returned when a caller acts on another rider's
	// offer.
	ErrNotOfferOwner = errors.New("caller does not own this offer")

	// ErrNotTripParticipant is returned when the caller is neither the
	// rider nor the matched driver.
	ErrNotTripParticipant = errors.New("caller is not a party to this trip")

	// ErrNoMatchedDriver is returned when a live view is requested
	// before any driver has accepted.
	ErrNoMatchedDriver = errors.New("no driver matched to this trip")
)
