package domain

// Coordinate is a WGS84 point. Immutable value type.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate lies in the representable range.
// Out-of-range coordinates are rejected by callers, never clamped.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Place is a named coordinate (a resolved pickup or drop-off point).
// Geocoding happens upstream; the service only ever sees coordinates.
type Place struct {
	Name       string     `json:"name"`
	Coordinate Coordinate `json:"coordinate"`
}
