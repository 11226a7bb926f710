package services

import (
	"context"
	"log"

	"github.com/rideway/rideway-backend/internal/models"
	"github.com/rideway/rideway-backend/internal/storage"
	"github.com/rideway/rideway-backend/pkg/utils"
)

// GeoIndex answers radius queries server-side (Redis GEOSEARCH). The matcher
// treats it as an optimization: any failure degrades to the haversine scan.
type GeoIndex interface {
	SearchWithinRadius(ctx context.Context, lat, lng, radiusKm float64) ([]uint, error)
}

// Matcher finds available captains near a pickup point. A captain is a
// candidate only when it has both a last known location and a live
// connection id.
type Matcher struct {
	Captains storage.CaptainStore
	Geo      GeoIndex // optional
}

// FindWithinRadius returns captains whose great-circle distance to the center
// is at most radiusKm. Zero matches is an empty slice, not an error. No
// ordering is guaranteed.
func (m *Matcher) FindWithinRadius(ctx context.Context, lat, lng, radiusKm float64) ([]models.Captain, error) {
	if m.Geo != nil {
		ids, err := m.Geo.SearchWithinRadius(ctx, lat, lng, radiusKm)
		if err == nil {
			return m.hydrate(ctx, ids)
		}
		log.Printf("matcher: geo index unavailable, falling back to scan: %v", err)
	}
	return m.scan(ctx, lat, lng, radiusKm)
}

func (m *Matcher) hydrate(ctx context.Context, ids []uint) ([]models.Captain, error) {
	captains, err := m.Captains.CaptainsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	matched := make([]models.Captain, 0, len(captains))
	for _, captain := range captains {
		if captain.Matchable() {
			matched = append(matched, captain)
		}
	}
	return matched, nil
}

// scan is the correctness reference: haversine over every matchable captain.
func (m *Matcher) scan(ctx context.Context, lat, lng, radiusKm float64) ([]models.Captain, error) {
	captains, err := m.Captains.MatchableCaptains(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.Captain, 0, len(captains))
	for _, captain := range captains {
		if !captain.Matchable() {
			continue
		}
		if utils.IsWithinRadius(lat, lng, *captain.Latitude, *captain.Longitude, radiusKm) {
			matched = append(matched, captain)
		}
	}
	return matched, nil
}
