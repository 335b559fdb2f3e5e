// README: Address geocoding via the Google Maps API.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"parcelbid/internal/types"
)

// GeocodeService resolves street addresses to coordinates. It backs the
// engine's optional Geocoder so customers may post orders without lat/lng.
type GeocodeService struct {
	client *maps.Client
}

// NewGeocodeService creates a GeocodeService with the given API key.
func NewGeocodeService(apiKey string) (*GeocodeService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{client: client}, nil
}

// Geocode returns the best-match coordinates for an address.
func (s *GeocodeService) Geocode(ctx context.Context, address string) (types.Point, error) {
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return types.Point{}, fmt.Errorf("geocode api error: %w", err)
	}
	if len(results) == 0 {
		return types.Point{}, fmt.Errorf("no geocode result for %q", address)
	}
	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}
