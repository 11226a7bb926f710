package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Location is either a free-form address or a resolved coordinate pair.
// Inputs are parsed exactly once at the boundary; downstream consumers check
// HasCoords instead of re-sniffing the raw string.
type Location struct {
	Raw       string  `json:"raw"`
	Address   string  `json:"address,omitempty"`
	Lat       float64 `json:"lat,omitempty"`
	Lng       float64 `json:"lng,omitempty"`
	HasCoords bool    `json:"hasCoords"`
}

// ParseLocation interprets s as a "lat,lng" pair when both parts parse as
// numbers within valid ranges, otherwise as a free-form address.
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}, fmt.Errorf("empty location")
	}

	parts := strings.Split(s, ",")
	if len(parts) == 2 {
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLat == nil && errLng == nil {
			if lat < -90 || lat > 90 {
				return Location{}, fmt.Errorf("invalid latitude %v", lat)
			}
			if lng < -180 || lng > 180 {
				return Location{}, fmt.Errorf("invalid longitude %v", lng)
			}
			return Location{Raw: s, Lat: lat, Lng: lng, HasCoords: true}, nil
		}
	}

	return Location{Raw: s, Address: s}, nil
}
