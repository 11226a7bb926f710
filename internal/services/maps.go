package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rideway/rideway-backend/pkg/utils"
	"googlemaps.github.io/maps"
)

// MapsService wraps the Google Maps APIs used by the fare estimator and the
// dispatch broadcaster. Every call is bounded by a timeout so a slow or
// rate-limited provider cannot stall a request; callers treat any error as a
// signal to take their fallback path.
type MapsService struct {
	client  *maps.Client
	timeout time.Duration
}

// NewMapsService creates a MapsService with the given API key.
func NewMapsService(apiKey string) (*MapsService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &MapsService{client: client, timeout: 3 * time.Second}, nil
}

// AddressToCoordinates geocodes a free-form address to a lat/lng pair.
func (s *MapsService) AddressToCoordinates(ctx context.Context, address string) (float64, float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return 0, 0, fmt.Errorf("geocode error: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("geocode: no results for %q", address)
	}

	loc := results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}

// DistanceAndDuration returns driving distance in meters and duration in
// seconds between two locations via the Distance Matrix API.
func (s *MapsService) DistanceAndDuration(ctx context.Context, origin, destination utils.Location) (float64, float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{locationQuery(origin)},
		Destinations: []string{locationQuery(destination)},
		Mode:         maps.TravelModeDriving,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("distance matrix error: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, 0, fmt.Errorf("distance matrix: empty response")
	}

	elem := resp.Rows[0].Elements[0]
	if elem.Status != "OK" {
		return 0, 0, fmt.Errorf("distance matrix: %s", elem.Status)
	}

	return float64(elem.Distance.Meters), elem.Duration.Seconds(), nil
}

// PlaceSuggestions returns autocomplete predictions for a partial address.
func (s *MapsService) PlaceSuggestions(ctx context.Context, input string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("place autocomplete error: %w", err)
	}

	suggestions := make([]string, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		suggestions = append(suggestions, p.Description)
	}
	return suggestions, nil
}

func locationQuery(loc utils.Location) string {
	if loc.HasCoords {
		return fmt.Sprintf("%f,%f", loc.Lat, loc.Lng)
	}
	return loc.Address
}
