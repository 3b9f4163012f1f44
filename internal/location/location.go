// Package location abstracts the location collaborator consumed for
// outbound message enrichment. Device-level acquisition lives outside this
// module; implementations here only hand back coordinates.
package location

import (
	"context"
	"errors"
)

// ErrNotConfigured indicates no location source is available.
var ErrNotConfigured = errors.New("location: not configured")

// Coordinates is a WGS 84 position.
type Coordinates struct {
	Latitude  float64
	Longitude float64
	Elevation float64
}

// Provider supplies the current location.
type Provider interface {
	CurrentLocation(ctx context.Context) (Coordinates, error)
}

// StaticProvider returns a fixed position from configuration.
type StaticProvider struct {
	Coords Coordinates
}

// NewStaticProvider wraps fixed coordinates.
func NewStaticProvider(lat, lon, elev float64) *StaticProvider {
	return &StaticProvider{Coords: Coordinates{Latitude: lat, Longitude: lon, Elevation: elev}}
}

// CurrentLocation returns the configured position.
func (p *StaticProvider) CurrentLocation(ctx context.Context) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	return p.Coords, nil
}

// FuncProvider adapts a function to the Provider interface.
type FuncProvider func(ctx context.Context) (Coordinates, error)

// CurrentLocation calls the wrapped function.
func (f FuncProvider) CurrentLocation(ctx context.Context) (Coordinates, error) {
	return f(ctx)
}
