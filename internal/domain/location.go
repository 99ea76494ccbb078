package domain

import "time"

// LiveLocation is the latest known position of one subject (driver or
// rider). One slot per identity, overwritten on every update; no history.
type LiveLocation struct {
	SubjectID  string     `json:"subject_id"`
	Coordinate Coordinate `json:"coordinate"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
