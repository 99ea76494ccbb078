package domain

import "time"

// NotificationKind classifies inbox entries.
type NotificationKind string

const (
	NotificationTripMatched   NotificationKind = "TRIP_MATCHED"
	NotificationTripConfirmed NotificationKind = "TRIP_CONFIRMED"
	NotificationTripDeclined  NotificationKind = "TRIP_DECLINED"
	NotificationTripCancelled NotificationKind = "TRIP_CANCELLED"
)

// Notification is an inbox entry for one recipient. Entries are append
// only; the single permitted mutation is the read acknowledgement.
type Notification struct {
	ID          string
	RecipientID string
	Kind        NotificationKind
	TripID      string
	Message     string
	Reason      string
	Read        bool
	CreatedAt   time.Time
}
