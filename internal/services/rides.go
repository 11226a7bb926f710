package services

import (
	"context"

	"github.com/rideway/rideway-backend/internal/models"
	"github.com/rideway/rideway-backend/internal/observability"
	"github.com/rideway/rideway-backend/internal/storage"
	"github.com/rideway/rideway-backend/pkg/utils"
)

// FareQuoter is the slice of the fare estimator the lifecycle service needs.
type FareQuoter interface {
	Estimate(ctx context.Context, pickup, destination utils.Location) (models.FareEstimate, error)
}

// RideService owns the ride state machine:
// pending -> accepted -> ongoing -> completed. All transitions go through
// conditional store writes, so two captains racing to confirm the same ride
// resolve at the database and the loser sees a state error.
type RideService struct {
	Rides storage.RideStore
	Fare  FareQuoter
}

// Create validates input, quotes the fare for the chosen vehicle class,
// generates the one-time code and persists the ride as pending. Fare and OTP
// are fixed at this point and never recomputed.
func (s *RideService) Create(ctx context.Context, userID uint, pickup, destination, vehicleType string) (*models.Ride, error) {
	if userID == 0 || pickup == "" || destination == "" || vehicleType == "" {
		return nil, models.ErrMissingFields
	}
	if !models.ValidVehicleType(vehicleType) {
		return nil, models.ErrMissingFields
	}

	pickupLoc, err := utils.ParseLocation(pickup)
	if err != nil {
		return nil, models.ErrMissingFields
	}
	destLoc, err := utils.ParseLocation(destination)
	if err != nil {
		return nil, models.ErrMissingFields
	}

	estimate, err := s.Fare.Estimate(ctx, pickupLoc, destLoc)
	if err != nil {
		return nil, err
	}

	ride := &models.Ride{
		UserID:      userID,
		Pickup:      pickup,
		Destination: destination,
		VehicleType: vehicleType,
		Fare:        estimate.ForVehicleType(vehicleType),
		OTP:         utils.GenerateRideOTP(utils.RideOTPLength),
		Status:      models.RideStatusPending,
	}

	if err := s.Rides.CreateRide(ctx, ride); err != nil {
		return nil, err
	}

	observability.RidesCreatedTotal.Inc()
	return ride, nil
}

// Confirm attaches a captain and moves the ride to accepted. Only a pending
// ride can be confirmed; the first store-level write wins.
func (s *RideService) Confirm(ctx context.Context, rideID, captainID uint) (*models.Ride, error) {
	ok, err := s.Rides.TransitionRide(ctx, rideID,
		models.RideStatusPending, models.RideStatusAccepted,
		map[string]interface{}{"captain_id": captainID})
	if err != nil {
		return nil, err
	}
	if !ok {
		// Distinguish "gone" from "already taken".
		if _, err := s.Rides.FindRideByID(ctx, rideID); err != nil {
			return nil, err
		}
		return nil, models.ErrRideNotPending
	}

	return s.Rides.FindRideByID(ctx, rideID)
}

// Start checks the one-time code and moves an accepted ride to ongoing. The
// state is checked before the code so a wrong-state call fails the same way
// regardless of code correctness.
func (s *RideService) Start(ctx context.Context, rideID, captainID uint, otp string) (*models.Ride, error) {
	ride, err := s.Rides.FindRideByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != models.RideStatusAccepted {
		return nil, models.ErrRideNotAccepted
	}
	if ride.CaptainID == nil || *ride.CaptainID != captainID {
		return nil, models.ErrCaptainMismatch
	}
	if otp == "" || otp != ride.OTP {
		return nil, models.ErrInvalidOTP
	}

	ok, err := s.Rides.TransitionRide(ctx, rideID,
		models.RideStatusAccepted, models.RideStatusOngoing, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrRideNotAccepted
	}

	return s.Rides.FindRideByID(ctx, rideID)
}

// End completes an ongoing ride. Only the assigned captain may end it.
func (s *RideService) End(ctx context.Context, rideID, captainID uint) (*models.Ride, error) {
	ride, err := s.Rides.FindRideByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.CaptainID == nil || *ride.CaptainID != captainID {
		return nil, models.ErrCaptainMismatch
	}
	if ride.Status != models.RideStatusOngoing {
		return nil, models.ErrRideNotOngoing
	}

	ok, err := s.Rides.TransitionRide(ctx, rideID,
		models.RideStatusOngoing, models.RideStatusCompleted, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrRideNotOngoing
	}

	return s.Rides.FindRideByID(ctx, rideID)
}
