package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rideway/rideway-backend/internal/models"
)

type fakeCaptainStore struct {
	captains []models.Captain
}

func (f *fakeCaptainStore) FindCaptainByID(ctx context.Context, id uint) (*models.Captain, error) {
	for i := range f.captains {
		if f.captains[i].ID == id {
			return &f.captains[i], nil
		}
	}
	return nil, models.ErrCaptainNotFound
}

func (f *fakeCaptainStore) CaptainsByIDs(ctx context.Context, ids []uint) ([]models.Captain, error) {
	out := make([]models.Captain, 0, len(ids))
	for _, id := range ids {
		for _, captain := range f.captains {
			if captain.ID == id {
				out = append(out, captain)
			}
		}
	}
	return out, nil
}

func (f *fakeCaptainStore) MatchableCaptains(ctx context.Context) ([]models.Captain, error) {
	return f.captains, nil
}

func (f *fakeCaptainStore) UpdateCaptainFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return nil
}

type errGeoIndex struct{}

func (errGeoIndex) SearchWithinRadius(ctx context.Context, lat, lng, radiusKm float64) ([]uint, error) {
	return nil, errors.New("geo index down")
}

type fixedGeoIndex struct{ ids []uint }

func (g fixedGeoIndex) SearchWithinRadius(ctx context.Context, lat, lng, radiusKm float64) ([]uint, error) {
	return g.ids, nil
}

func captainAt(id uint, lat, lng float64, connID string) models.Captain {
	captain := models.Captain{ConnID: connID, Latitude: &lat, Longitude: &lng}
	captain.ID = id
	return captain
}

func TestFindWithinRadiusBoundary(t *testing.T) {
	// ~1.9km and ~2.1km due north of the origin.
	near := captainAt(1, 1.9/111.1949, 0, "conn-1")
	far := captainAt(2, 2.1/111.1949, 0, "conn-2")

	m := &Matcher{Captains: &fakeCaptainStore{captains: []models.Captain{near, far}}}

	matched, err := m.FindWithinRadius(context.Background(), 0, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 1 || matched[0].ID != 1 {
		t.Fatalf("expected only captain 1, got %+v", matched)
	}
}

func TestFindWithinRadiusExcludesOfflineAndUnlocated(t *testing.T) {
	located := captainAt(1, 0.001, 0.001, "conn-1")

	offline := captainAt(2, 0.001, 0.001, "")

	noLocation := models.Captain{ConnID: "conn-3"}
	noLocation.ID = 3

	store := &fakeCaptainStore{captains: []models.Captain{located, offline, noLocation}}
	m := &Matcher{Captains: store}

	matched, err := m.FindWithinRadius(context.Background(), 0, 0, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 1 || matched[0].ID != 1 {
		t.Fatalf("expected only the located online captain, got %+v", matched)
	}
}

func TestFindWithinRadiusZeroMatches(t *testing.T) {
	m := &Matcher{Captains: &fakeCaptainStore{}}

	matched, err := m.FindWithinRadius(context.Background(), 0, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if matched == nil || len(matched) != 0 {
		t.Fatalf("expected empty slice, got %v", matched)
	}
}

func TestGeoIndexFailureFallsBackToScan(t *testing.T) {
	near := captainAt(1, 0.001, 0, "conn-1")
	m := &Matcher{
		Captains: &fakeCaptainStore{captains: []models.Captain{near}},
		Geo:      errGeoIndex{},
	}

	matched, err := m.FindWithinRadius(context.Background(), 0, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 1 {
		t.Fatalf("expected scan fallback to match, got %+v", matched)
	}
}

func TestGeoIndexResultsFilteredByPresence(t *testing.T) {
	online := captainAt(1, 0.001, 0, "conn-1")
	offline := captainAt(2, 0.001, 0, "")

	m := &Matcher{
		Captains: &fakeCaptainStore{captains: []models.Captain{online, offline}},
		Geo:      fixedGeoIndex{ids: []uint{1, 2}},
	}

	matched, err := m.FindWithinRadius(context.Background(), 0, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 1 || matched[0].ID != 1 {
		t.Fatalf("expected the offline captain dropped, got %+v", matched)
	}
}
