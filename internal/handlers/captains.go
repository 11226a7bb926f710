package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rideway/rideway-backend/internal/models"
	"github.com/rideway/rideway-backend/internal/services"
)

// UpdateCaptainLocation handles captain location updates over REST. Most
// clients push location over the WebSocket; this endpoint covers apps that
// report in the background without a live socket.
func UpdateCaptainLocation(presence services.PresenceRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		captainID := c.GetUint("userId")
		userType := c.GetString("userType")

		if userType != string(models.UserTypeCaptain) {
			c.JSON(403, gin.H{"error": "Only captains can update location"})
			return
		}

		var input struct {
			Lat float64 `json:"lat" binding:"required"`
			Lng float64 `json:"lng" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		// Validate coordinates
		if input.Lat < -90 || input.Lat > 90 {
			c.JSON(400, gin.H{"error": "Invalid latitude"})
			return
		}
		if input.Lng < -180 || input.Lng > 180 {
			c.JSON(400, gin.H{"error": "Invalid longitude"})
			return
		}

		presence.UpdateLocation(c.Request.Context(), captainID, input.Lat, input.Lng)

		c.JSON(200, gin.H{"message": "Location updated successfully"})
	}
}
