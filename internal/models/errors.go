package models

import "errors"

var (
	// ErrRideNotFound is returned when a ride id does not exist.
	ErrRideNotFound = errors.New("ride not found")

	// ErrRideNotPending is returned when a captain tries to confirm a ride
	// that has already been taken or has moved past pending.
	ErrRideNotPending = errors.New("ride is no longer available")

	// ErrRideNotAccepted is returned when startRide is called on a ride that
	// is not in the accepted state.
	ErrRideNotAccepted = errors.New("ride not accepted")

	// ErrRideNotOngoing is returned when endRide is called on a ride that is
	// not in the ongoing state.
	ErrRideNotOngoing = errors.New("ride not ongoing")

	// ErrCaptainNotFound is returned when a captain id does not exist.
	ErrCaptainNotFound = errors.New("captain not found")

	// ErrInvalidOTP is returned when the code supplied at ride start does not
	// match the one generated at creation.
	ErrInvalidOTP = errors.New("invalid OTP")

	// ErrCaptainMismatch is returned when a captain operates on a ride that is
	// assigned to a different captain.
	ErrCaptainMismatch = errors.New("ride assigned to a different captain")

	// ErrMissingFields is returned when a required create/estimate input is
	// absent or unparseable.
	ErrMissingFields = errors.New("all fields are required")

	// ErrRoutingUnavailable is returned when the geocoding/routing provider
	// is down and no fallback can take its place, e.g. an address-only
	// endpoint that cannot be resolved to coordinates.
	ErrRoutingUnavailable = errors.New("routing provider unavailable")
)
