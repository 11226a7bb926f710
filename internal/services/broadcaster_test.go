package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rideway/rideway-backend/internal/models"
)

type fakeMatcher struct {
	captains []models.Captain
	err      error

	gotLat, gotLng, gotRadius float64
}

func (f *fakeMatcher) FindWithinRadius(ctx context.Context, lat, lng, radiusKm float64) ([]models.Captain, error) {
	f.gotLat, f.gotLng, f.gotRadius = lat, lng, radiusKm
	return f.captains, f.err
}

type memPresence struct {
	mu    sync.RWMutex
	conns map[string]string
}

func newMemPresence() *memPresence {
	return &memPresence{conns: make(map[string]string)}
}

func (p *memPresence) SetConnection(ctx context.Context, partyType models.UserType, partyID uint, connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns[presenceKey(partyType, partyID)] = connID
}

func (p *memPresence) ClearConnection(ctx context.Context, partyType models.UserType, partyID uint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.conns, presenceKey(partyType, partyID))
}

func (p *memPresence) UpdateLocation(ctx context.Context, captainID uint, lat, lng float64) {}

func (p *memPresence) Lookup(partyType models.UserType, partyID uint) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	connID, ok := p.conns[presenceKey(partyType, partyID)]
	return connID, ok && connID != ""
}

type sentEvent struct {
	ConnID  string
	Event   string
	Payload interface{}
}

type recordSender struct {
	mu    sync.Mutex
	sends []sentEvent
	fail  map[string]bool
}

func (r *recordSender) Send(connID, event string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[connID] {
		return errors.New("send failed")
	}
	r.sends = append(r.sends, sentEvent{ConnID: connID, Event: event, Payload: payload})
	return nil
}

func (r *recordSender) sent() []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sentEvent, len(r.sends))
	copy(out, r.sends)
	return out
}

type fakeUserStore struct {
	users map[uint]*models.User
}

func (f *fakeUserStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (f *fakeUserStore) UpdateUserFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return nil
}

func testRide() *models.Ride {
	ride := &models.Ride{
		UserID:      7,
		Pickup:      "12.90,77.58",
		Destination: "12.93,77.61",
		VehicleType: models.VehicleTypeCar,
		Fare:        136,
		OTP:         "482913",
		Status:      models.RideStatusPending,
	}
	ride.ID = 1
	return ride
}

func testUserStore() *fakeUserStore {
	rider := &models.User{Username: "asha", PhoneNumber: "+91900000000"}
	rider.ID = 7
	return &fakeUserStore{users: map[uint]*models.User{7: rider}}
}

func TestBroadcastSendsToAllMatchedCaptains(t *testing.T) {
	first := captainAt(1, 12.901, 77.581, "conn-1")
	second := captainAt(2, 12.902, 77.582, "conn-2")

	presence := newMemPresence()
	presence.SetConnection(context.Background(), models.UserTypeCaptain, 1, "conn-1")
	presence.SetConnection(context.Background(), models.UserTypeCaptain, 2, "conn-2")

	sender := &recordSender{}
	matcher := &fakeMatcher{captains: []models.Captain{first, second}}
	b := &Broadcaster{
		Matcher:  matcher,
		Presence: presence,
		Sender:   sender,
		Users:    testUserStore(),
	}

	b.BroadcastNewRide(context.Background(), testRide())

	sends := sender.sent()
	if len(sends) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(sends))
	}
	for _, s := range sends {
		if s.Event != "new-ride" {
			t.Fatalf("expected new-ride event, got %s", s.Event)
		}
		payload := s.Payload.(NewRidePayload)
		if payload.OTP != "482913" {
			t.Fatal("offer payload must carry the OTP")
		}
		if payload.User.Username != "asha" {
			t.Fatalf("missing requester summary: %+v", payload.User)
		}
	}

	if matcher.gotRadius != DefaultDispatchRadiusKm {
		t.Fatalf("expected default radius, got %f", matcher.gotRadius)
	}
	if matcher.gotLat != 12.90 || matcher.gotLng != 77.58 {
		t.Fatalf("pickup not resolved to coordinates: (%f, %f)", matcher.gotLat, matcher.gotLng)
	}
}

func TestBroadcastSkipsCaptainsWithoutConnection(t *testing.T) {
	online := captainAt(1, 12.901, 77.581, "conn-1")
	stale := captainAt(2, 12.902, 77.582, "conn-2")

	presence := newMemPresence()
	presence.SetConnection(context.Background(), models.UserTypeCaptain, 1, "conn-1")
	// Captain 2 matched on stale data but has since disconnected.

	sender := &recordSender{}
	b := &Broadcaster{
		Matcher:  &fakeMatcher{captains: []models.Captain{online, stale}},
		Presence: presence,
		Sender:   sender,
		Users:    testUserStore(),
	}

	b.BroadcastNewRide(context.Background(), testRide())

	sends := sender.sent()
	if len(sends) != 1 || sends[0].ConnID != "conn-1" {
		t.Fatalf("expected only conn-1, got %+v", sends)
	}
}

func TestBroadcastOneFailureDoesNotCancelOthers(t *testing.T) {
	first := captainAt(1, 12.901, 77.581, "conn-1")
	second := captainAt(2, 12.902, 77.582, "conn-2")

	presence := newMemPresence()
	presence.SetConnection(context.Background(), models.UserTypeCaptain, 1, "conn-1")
	presence.SetConnection(context.Background(), models.UserTypeCaptain, 2, "conn-2")

	sender := &recordSender{fail: map[string]bool{"conn-1": true}}
	b := &Broadcaster{
		Matcher:  &fakeMatcher{captains: []models.Captain{first, second}},
		Presence: presence,
		Sender:   sender,
		Users:    testUserStore(),
	}

	b.BroadcastNewRide(context.Background(), testRide())

	sends := sender.sent()
	if len(sends) != 1 || sends[0].ConnID != "conn-2" {
		t.Fatalf("expected conn-2 to still receive the offer, got %+v", sends)
	}
}

func TestBroadcastExitsSilentlyOnZeroMatches(t *testing.T) {
	sender := &recordSender{}
	b := &Broadcaster{
		Matcher:  &fakeMatcher{},
		Presence: newMemPresence(),
		Sender:   sender,
		Users:    testUserStore(),
	}

	b.BroadcastNewRide(context.Background(), testRide())

	if len(sender.sent()) != 0 {
		t.Fatal("no offers expected")
	}
}

func TestBroadcastExitsSilentlyOnMatcherError(t *testing.T) {
	sender := &recordSender{}
	b := &Broadcaster{
		Matcher:  &fakeMatcher{err: errors.New("store down")},
		Presence: newMemPresence(),
		Sender:   sender,
		Users:    testUserStore(),
	}

	b.BroadcastNewRide(context.Background(), testRide())

	if len(sender.sent()) != 0 {
		t.Fatal("no offers expected after matcher failure")
	}
}

func TestBroadcastAddressPickupWithoutGeocoder(t *testing.T) {
	sender := &recordSender{}
	matcher := &fakeMatcher{captains: []models.Captain{captainAt(1, 0, 0, "conn-1")}}
	b := &Broadcaster{
		Matcher:  matcher,
		Presence: newMemPresence(),
		Sender:   sender,
		Users:    testUserStore(),
	}

	ride := testRide()
	ride.Pickup = "MG Road, Bengaluru"
	b.BroadcastNewRide(context.Background(), ride)

	if len(sender.sent()) != 0 {
		t.Fatal("dispatch must be skipped when the pickup cannot be resolved")
	}
}

type stubGeocoder struct {
	lat, lng float64
	err      error
}

func (s stubGeocoder) AddressToCoordinates(ctx context.Context, address string) (float64, float64, error) {
	return s.lat, s.lng, s.err
}

func TestBroadcastGeocodesAddressPickup(t *testing.T) {
	captain := captainAt(1, 12.901, 77.581, "conn-1")
	presence := newMemPresence()
	presence.SetConnection(context.Background(), models.UserTypeCaptain, 1, "conn-1")

	sender := &recordSender{}
	matcher := &fakeMatcher{captains: []models.Captain{captain}}
	b := &Broadcaster{
		Matcher:  matcher,
		Presence: presence,
		Sender:   sender,
		Geocoder: stubGeocoder{lat: 12.90, lng: 77.58},
		Users:    testUserStore(),
	}

	ride := testRide()
	ride.Pickup = "MG Road, Bengaluru"
	b.BroadcastNewRide(context.Background(), ride)

	if len(sender.sent()) != 1 {
		t.Fatal("expected one offer after geocoding")
	}
	if matcher.gotLat != 12.90 || matcher.gotLng != 77.58 {
		t.Fatalf("matcher called with (%f, %f)", matcher.gotLat, matcher.gotLng)
	}
}
