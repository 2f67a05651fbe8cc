package interfaces

import "context"

// Coordinates is a geocoding result.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Geocoder resolves an address to coordinates. Callers treat failures as
// absence; geocoding never blocks a registration.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Coordinates, error)
}
