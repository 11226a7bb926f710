package storage

import (
	"context"

	"github.com/rideway/rideway-backend/internal/models"
)

// RideStore is the persistence surface the lifecycle service depends on.
// Implementations must provide per-record atomicity: TransitionRide is the
// only way a ride changes status, and concurrent callers racing on the same
// ride must observe exactly one winner.
type RideStore interface {
	CreateRide(ctx context.Context, ride *models.Ride) error
	FindRideByID(ctx context.Context, id uint) (*models.Ride, error)

	// TransitionRide moves the ride from one status to the next, applying
	// extra field updates in the same write. It returns false when the ride
	// was not in the expected status at write time.
	TransitionRide(ctx context.Context, id uint, from, to string, fields map[string]interface{}) (bool, error)
}

// CaptainStore provides captain lookup for matching and presence updates.
type CaptainStore interface {
	FindCaptainByID(ctx context.Context, id uint) (*models.Captain, error)
	CaptainsByIDs(ctx context.Context, ids []uint) ([]models.Captain, error)

	// MatchableCaptains returns captains with both a known location and a
	// live connection id.
	MatchableCaptains(ctx context.Context) ([]models.Captain, error)

	UpdateCaptainFields(ctx context.Context, id uint, fields map[string]interface{}) error
}

// UserStore provides requester lookup and presence updates.
type UserStore interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	UpdateUserFields(ctx context.Context, id uint, fields map[string]interface{}) error
}

// Store bundles the three stores a fully wired server needs.
type Store interface {
	RideStore
	CaptainStore
	UserStore
}
