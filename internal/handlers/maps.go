package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rideway/rideway-backend/internal/services"
)

// GetSuggestions proxies place autocomplete for the pickup/destination forms.
func GetSuggestions(mapsService *services.MapsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		input := c.Query("input")
		if input == "" {
			c.JSON(400, gin.H{"error": "input query is required"})
			return
		}

		if mapsService == nil {
			c.JSON(503, gin.H{"error": "Maps provider not configured"})
			return
		}

		suggestions, err := mapsService.PlaceSuggestions(c.Request.Context(), input)
		if err != nil {
			c.JSON(503, gin.H{"error": "Suggestions unavailable"})
			return
		}

		c.JSON(200, gin.H{"suggestions": suggestions})
	}
}
