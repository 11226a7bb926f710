package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/rideway/rideway-backend/internal/models"
	"github.com/rideway/rideway-backend/internal/services"
	"github.com/rideway/rideway-backend/pkg/utils"
)

// CreateRide handles a rider's ride request. The response is written as soon
// as the ride is persisted; matching and captain notification run afterwards
// in a detached goroutine so creation latency never includes broadcast
// latency.
func CreateRide(rides *services.RideService, broadcaster *services.Broadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		userType := c.GetString("userType")

		if userType != string(models.UserTypeRider) {
			c.JSON(403, gin.H{"error": "Only users can request rides"})
			return
		}

		var input struct {
			Pickup      string `json:"pickup" binding:"required"`
			Destination string `json:"destination" binding:"required"`
			VehicleType string `json:"vehicleType" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		ride, err := rides.Create(c.Request.Context(), userID, input.Pickup, input.Destination, input.VehicleType)
		if err != nil {
			respondRideError(c, err)
			return
		}

		c.JSON(201, ride)

		// Detached from the request: the response above is already on the
		// wire and must not wait for matching or sends.
		go broadcaster.BroadcastNewRide(context.Background(), ride)
	}
}

// GetFare quotes all vehicle classes for a pickup/destination pair.
func GetFare(fare *services.FareEstimator) gin.HandlerFunc {
	return func(c *gin.Context) {
		pickupRaw := c.Query("pickup")
		destinationRaw := c.Query("destination")
		if pickupRaw == "" || destinationRaw == "" {
			c.JSON(400, gin.H{"error": "pickup and destination are required"})
			return
		}

		pickup, err := utils.ParseLocation(pickupRaw)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid pickup"})
			return
		}
		destination, err := utils.ParseLocation(destinationRaw)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid destination"})
			return
		}

		estimate, err := fare.Estimate(c.Request.Context(), pickup, destination)
		if err != nil {
			respondRideError(c, err)
			return
		}

		c.JSON(200, estimate)
	}
}

// ConfirmRide lets a captain accept a pending ride. The requester is notified
// over their live connection; the captain's HTTP response never carries the
// one-time code.
func ConfirmRide(rides *services.RideService, presence services.PresenceRegistry, sender services.NotificationSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		captainID := c.GetUint("userId")
		userType := c.GetString("userType")

		if userType != string(models.UserTypeCaptain) {
			c.JSON(403, gin.H{"error": "Only captains can confirm rides"})
			return
		}

		var input struct {
			RideID uint `json:"rideId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		ride, err := rides.Confirm(c.Request.Context(), input.RideID, captainID)
		if err != nil {
			respondRideError(c, err)
			return
		}

		notifyRequester(presence, sender, ride, "ride-confirmed")
		c.JSON(200, captainView(ride))
	}
}

// StartRide moves an accepted ride to ongoing once the captain supplies the
// code the rider read out.
func StartRide(rides *services.RideService, presence services.PresenceRegistry, sender services.NotificationSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		captainID := c.GetUint("userId")
		userType := c.GetString("userType")

		if userType != string(models.UserTypeCaptain) {
			c.JSON(403, gin.H{"error": "Only captains can start rides"})
			return
		}

		var input struct {
			RideID uint   `json:"rideId" binding:"required"`
			OTP    string `json:"otp" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		ride, err := rides.Start(c.Request.Context(), input.RideID, captainID, input.OTP)
		if err != nil {
			respondRideError(c, err)
			return
		}

		notifyRequester(presence, sender, ride, "ride-started")
		c.JSON(200, captainView(ride))
	}
}

// EndRide completes an ongoing ride; only the assigned captain may call it.
func EndRide(rides *services.RideService, presence services.PresenceRegistry, sender services.NotificationSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		captainID := c.GetUint("userId")
		userType := c.GetString("userType")

		if userType != string(models.UserTypeCaptain) {
			c.JSON(403, gin.H{"error": "Only captains can end rides"})
			return
		}

		var input struct {
			RideID uint `json:"rideId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		ride, err := rides.End(c.Request.Context(), input.RideID, captainID)
		if err != nil {
			respondRideError(c, err)
			return
		}

		notifyRequester(presence, sender, ride, "ride-ended")
		c.JSON(200, captainView(ride))
	}
}

// notifyRequester sends a one-shot lifecycle event to the rider's live
// connection. The rider keeps the OTP in these payloads; that is the only
// side the code is revealed to.
func notifyRequester(presence services.PresenceRegistry, sender services.NotificationSender, ride *models.Ride, event string) {
	connID, ok := presence.Lookup(models.UserTypeRider, ride.UserID)
	if !ok {
		log.Printf("notify: requester %d offline, dropping %s for ride %d", ride.UserID, event, ride.ID)
		return
	}
	if err := sender.Send(connID, event, ride); err != nil {
		log.Printf("notify: %s to requester %d failed: %v", event, ride.UserID, err)
	}
}

// captainView strips the one-time code from captain-facing ride payloads.
func captainView(ride *models.Ride) models.Ride {
	view := *ride
	view.OTP = ""
	return view
}

func respondRideError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrMissingFields):
		c.JSON(400, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrRideNotFound), errors.Is(err, models.ErrCaptainNotFound):
		c.JSON(404, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidOTP):
		c.JSON(401, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrRideNotPending),
		errors.Is(err, models.ErrRideNotAccepted),
		errors.Is(err, models.ErrRideNotOngoing),
		errors.Is(err, models.ErrCaptainMismatch):
		c.JSON(409, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrRoutingUnavailable):
		c.JSON(503, gin.H{"error": "Routing provider unavailable"})
	default:
		log.Printf("ride operation failed: %v", err)
		c.JSON(500, gin.H{"error": "Internal server error"})
	}
}
