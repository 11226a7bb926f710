package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/rideway/rideway-backend/internal/models"
	"github.com/rideway/rideway-backend/internal/storage"
)

// PresenceRegistry maps a party (rider or captain) to its live-connection
// address and tracks captain locations. Presence is best-effort: writes are
// persisted fire-and-forget, failures are logged rather than surfaced, and
// concurrent updates to the same party resolve last-write-wins.
type PresenceRegistry interface {
	SetConnection(ctx context.Context, partyType models.UserType, partyID uint, connID string)
	ClearConnection(ctx context.Context, partyType models.UserType, partyID uint)
	UpdateLocation(ctx context.Context, captainID uint, lat, lng float64)
	Lookup(partyType models.UserType, partyID uint) (string, bool)
}

// Registry is the in-process presence table, mirrored to Postgres and Redis.
// Lookups are served from memory; the store copies exist so presence survives
// a restart and so the matcher's SQL path can filter on conn_id.
type Registry struct {
	users    storage.UserStore
	captains storage.CaptainStore

	mu    sync.RWMutex
	conns map[string]string
}

func NewRegistry(users storage.UserStore, captains storage.CaptainStore) *Registry {
	return &Registry{
		users:    users,
		captains: captains,
		conns:    make(map[string]string),
	}
}

func presenceKey(partyType models.UserType, partyID uint) string {
	return fmt.Sprintf("%s:%d", partyType, partyID)
}

func (r *Registry) SetConnection(ctx context.Context, partyType models.UserType, partyID uint, connID string) {
	r.mu.Lock()
	r.conns[presenceKey(partyType, partyID)] = connID
	r.mu.Unlock()

	r.persistConnID(ctx, partyType, partyID, connID)
}

func (r *Registry) ClearConnection(ctx context.Context, partyType models.UserType, partyID uint) {
	r.mu.Lock()
	delete(r.conns, presenceKey(partyType, partyID))
	r.mu.Unlock()

	r.persistConnID(ctx, partyType, partyID, "")

	if partyType == models.UserTypeCaptain {
		if err := GeoRemoveCaptain(ctx, partyID); err != nil {
			log.Printf("presence: failed to remove captain %d from geo index: %v", partyID, err)
		}
	}
}

func (r *Registry) UpdateLocation(ctx context.Context, captainID uint, lat, lng float64) {
	fields := map[string]interface{}{"latitude": lat, "longitude": lng}
	if err := r.captains.UpdateCaptainFields(ctx, captainID, fields); err != nil {
		log.Printf("presence: failed to persist captain %d location: %v", captainID, err)
	}
	if err := GeoAddCaptain(ctx, captainID, lat, lng); err != nil {
		log.Printf("presence: failed to index captain %d location: %v", captainID, err)
	}
}

func (r *Registry) Lookup(partyType models.UserType, partyID uint) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connID, ok := r.conns[presenceKey(partyType, partyID)]
	if !ok || connID == "" {
		return "", false
	}
	return connID, true
}

func (r *Registry) persistConnID(ctx context.Context, partyType models.UserType, partyID uint, connID string) {
	fields := map[string]interface{}{"conn_id": connID}

	var err error
	switch partyType {
	case models.UserTypeCaptain:
		err = r.captains.UpdateCaptainFields(ctx, partyID, fields)
	default:
		err = r.users.UpdateUserFields(ctx, partyID, fields)
	}
	if err != nil {
		log.Printf("presence: failed to persist conn id for %s %d: %v", partyType, partyID, err)
	}

	if err := SetConnIDCache(ctx, string(partyType), partyID, connID); err != nil {
		log.Printf("presence: failed to cache conn id for %s %d: %v", partyType, partyID, err)
	}
}
