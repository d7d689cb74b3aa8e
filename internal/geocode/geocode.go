package geocode

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/todays-weather/internal/geo"
)

// ErrDisabled is returned when no geocoding key is configured.
var ErrDisabled = errors.New("geocoding is not configured")

// lookupFunc matches geocoder.Geocoding.
type lookupFunc func(geocoder.Address) (geocoder.Location, error)

// Google resolves place names through the Google Geocoding API.
type Google struct {
	lookup lookupFunc
}

var keyOnce sync.Once

// NewGoogle returns a geocoder using apiKey, or nil when apiKey is empty.
// The underlying library keeps its key in a package variable, so only the
// first key set in a process takes effect.
func NewGoogle(apiKey string) *Google {
	if apiKey == "" {
		return nil
	}
	keyOnce.Do(func() { geocoder.ApiKey = apiKey })
	return &Google{lookup: geocoder.Geocoding}
}

// Locate returns the coordinate of city, country.
func (g *Google) Locate(ctx context.Context, city, country string) (geo.Coordinate, error) {
	if g == nil || g.lookup == nil {
		return geo.Coordinate{}, ErrDisabled
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		loc, err := g.lookup(geocoder.Address{City: city, Country: country})
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return geo.Coordinate{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return geo.Coordinate{}, fmt.Errorf("geocode %s, %s: %w", city, country, r.err)
		}
		return geo.Coordinate{Lat: r.loc.Latitude, Lon: r.loc.Longitude}, nil
	}
}
