package services

import (
	"context"
	"log"
	"sync"

	"github.com/rideway/rideway-backend/internal/models"
	"github.com/rideway/rideway-backend/internal/observability"
	"github.com/rideway/rideway-backend/internal/storage"
	"github.com/rideway/rideway-backend/pkg/utils"
)

// DefaultDispatchRadiusKm is how far from the pickup point captains are
// considered for a new-ride offer.
const DefaultDispatchRadiusKm = 2.0

// NotificationSender delivers one event to one live connection. At-most-once,
// best-effort, no delivery acknowledgment. The WebSocket hub implements it.
type NotificationSender interface {
	Send(connID, event string, payload interface{}) error
}

// CaptainMatcher is the slice of the matcher the broadcaster needs.
type CaptainMatcher interface {
	FindWithinRadius(ctx context.Context, lat, lng, radiusKm float64) ([]models.Captain, error)
}

// Geocoder resolves a free-form address to coordinates.
type Geocoder interface {
	AddressToCoordinates(ctx context.Context, address string) (float64, float64, error)
}

// Broadcaster fans a new-ride offer out to every matched captain. It runs
// after the creation response has already been written, so every failure here
// is logged and swallowed; the ride is never rolled back.
type Broadcaster struct {
	Matcher  CaptainMatcher
	Presence PresenceRegistry
	Sender   NotificationSender
	Geocoder Geocoder // nil when no provider is configured
	Users    storage.UserStore
	RadiusKm float64
}

// NewRidePayload is the offer each matched captain receives. The OTP rides
// along so the captain's app can verify the rider's code offline at pickup.
type NewRidePayload struct {
	RideID      uint             `json:"rideId"`
	Pickup      string           `json:"pickup"`
	Destination string           `json:"destination"`
	VehicleType string           `json:"vehicleType"`
	Fare        int              `json:"fare"`
	OTP         string           `json:"otp"`
	User        RequesterSummary `json:"user"`
}

// RequesterSummary is the minimal rider identity shown to captains.
type RequesterSummary struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	PhoneNumber string `json:"phoneNumber"`
}

// BroadcastNewRide resolves the pickup, matches captains and sends each one
// an offer concurrently. Intended to be launched with `go` right after the
// create response; the WaitGroup join exists only for the completion log.
func (b *Broadcaster) BroadcastNewRide(ctx context.Context, ride *models.Ride) {
	lat, lng, ok := b.resolvePickup(ctx, ride.Pickup)
	if !ok {
		return
	}

	radius := b.RadiusKm
	if radius <= 0 {
		radius = DefaultDispatchRadiusKm
	}

	captains, err := b.Matcher.FindWithinRadius(ctx, lat, lng, radius)
	if err != nil {
		log.Printf("broadcast: matching failed for ride %d: %v", ride.ID, err)
		return
	}
	if len(captains) == 0 {
		log.Printf("broadcast: no captains within %.1fkm for ride %d", radius, ride.ID)
		return
	}

	payload := b.buildPayload(ctx, ride)

	var wg sync.WaitGroup
	for _, captain := range captains {
		connID, ok := b.Presence.Lookup(models.UserTypeCaptain, captain.ID)
		if !ok {
			continue
		}

		wg.Add(1)
		go func(captainID uint, connID string) {
			defer wg.Done()
			if err := b.Sender.Send(connID, "new-ride", payload); err != nil {
				observability.DispatchFailuresTotal.Inc()
				log.Printf("broadcast: offer to captain %d failed: %v", captainID, err)
				return
			}
			observability.DispatchOffersTotal.Inc()
		}(captain.ID, connID)
	}
	wg.Wait()

	log.Printf("broadcast: ride %d offered to %d captains", ride.ID, len(captains))
}

func (b *Broadcaster) resolvePickup(ctx context.Context, pickup string) (float64, float64, bool) {
	loc, err := utils.ParseLocation(pickup)
	if err != nil {
		log.Printf("broadcast: unparseable pickup %q: %v", pickup, err)
		return 0, 0, false
	}
	if loc.HasCoords {
		return loc.Lat, loc.Lng, true
	}
	if b.Geocoder == nil {
		log.Printf("broadcast: no geocoder configured, skipping dispatch for %q", pickup)
		return 0, 0, false
	}

	lat, lng, err := b.Geocoder.AddressToCoordinates(ctx, loc.Address)
	if err != nil {
		log.Printf("broadcast: geocoding %q failed: %v", loc.Address, err)
		return 0, 0, false
	}
	return lat, lng, true
}

func (b *Broadcaster) buildPayload(ctx context.Context, ride *models.Ride) NewRidePayload {
	payload := NewRidePayload{
		RideID:      ride.ID,
		Pickup:      ride.Pickup,
		Destination: ride.Destination,
		VehicleType: ride.VehicleType,
		Fare:        ride.Fare,
		OTP:         ride.OTP,
		User:        RequesterSummary{ID: ride.UserID},
	}

	if user, err := b.Users.FindUserByID(ctx, ride.UserID); err == nil {
		payload.User.Username = user.Username
		payload.User.PhoneNumber = user.PhoneNumber
	} else {
		log.Printf("broadcast: could not load requester %d: %v", ride.UserID, err)
	}

	return payload
}
