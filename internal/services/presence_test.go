package services

import (
	"context"
	"sync"
	"testing"

	"github.com/rideway/rideway-backend/internal/models"
)

type recordCaptainStore struct {
	fakeCaptainStore
	mu      sync.Mutex
	updates []map[string]interface{}
}

func (r *recordCaptainStore) UpdateCaptainFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, fields)
	return nil
}

func newRegistryForTest() (*Registry, *recordCaptainStore) {
	captains := &recordCaptainStore{}
	return NewRegistry(&fakeUserStore{users: map[uint]*models.User{}}, captains), captains
}

func TestRegistryLookupAfterSet(t *testing.T) {
	reg, _ := newRegistryForTest()
	ctx := context.Background()

	reg.SetConnection(ctx, models.UserTypeCaptain, 5, "conn-abc")

	connID, ok := reg.Lookup(models.UserTypeCaptain, 5)
	if !ok || connID != "conn-abc" {
		t.Fatalf("lookup returned (%q, %v)", connID, ok)
	}

	// Riders and captains with the same numeric id are distinct parties.
	if _, ok := reg.Lookup(models.UserTypeRider, 5); ok {
		t.Fatal("rider 5 should be absent")
	}
}

func TestRegistryLastWriteWins(t *testing.T) {
	reg, _ := newRegistryForTest()
	ctx := context.Background()

	reg.SetConnection(ctx, models.UserTypeCaptain, 5, "conn-old")
	reg.SetConnection(ctx, models.UserTypeCaptain, 5, "conn-new")

	connID, ok := reg.Lookup(models.UserTypeCaptain, 5)
	if !ok || connID != "conn-new" {
		t.Fatalf("expected conn-new, got %q", connID)
	}
}

func TestRegistryClearConnection(t *testing.T) {
	reg, _ := newRegistryForTest()
	ctx := context.Background()

	reg.SetConnection(ctx, models.UserTypeRider, 7, "conn-xyz")
	reg.ClearConnection(ctx, models.UserTypeRider, 7)

	if _, ok := reg.Lookup(models.UserTypeRider, 7); ok {
		t.Fatal("connection should be gone after clear")
	}
}

func TestRegistryUpdateLocationPersists(t *testing.T) {
	reg, captains := newRegistryForTest()

	reg.UpdateLocation(context.Background(), 5, 12.90, 77.58)

	captains.mu.Lock()
	defer captains.mu.Unlock()
	if len(captains.updates) != 1 {
		t.Fatalf("expected one persisted update, got %d", len(captains.updates))
	}
	if captains.updates[0]["latitude"] != 12.90 || captains.updates[0]["longitude"] != 77.58 {
		t.Fatalf("unexpected fields: %+v", captains.updates[0])
	}
}
