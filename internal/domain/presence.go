package domain

import "time"

// DriverPresence tracks a driver's online state, last known location and
// declared route. One record per driver, created implicitly on the first
// set-online call. A driver with Online=false, or with no route, is never
// a match candidate regardless of what else the record holds.
type DriverPresence struct {
	DriverID          string
	Online            bool
	Location          *Coordinate
	LocationUpdatedAt time.Time
	Route             *DeclaredRoute
}

// MatchCandidate reports whether the driver can appear in match listings.
func (p *DriverPresence) MatchCandidate() bool {
	return p.Online && p.Route != nil
}

// Clone returns a deep copy so readers never share mutable state with the
// registry's current record.
func (p *DriverPresence) Clone() *DriverPresence {
	cp := *p
	if p.Location != nil {
		loc := *p.Location
		cp.Location = &loc
	}
	if p.Route != nil {
		route := *p.Route
		if p.Route.Waypoints != nil {
			route.Waypoints = append([]Coordinate(nil), p.Route.Waypoints...)
		}
		cp.Route = &route
	}
	return &cp
}
