package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rideway/rideway-backend/internal/database"
	"github.com/rideway/rideway-backend/internal/handlers"
	"github.com/rideway/rideway-backend/internal/middleware"
	"github.com/rideway/rideway-backend/internal/services"
	"github.com/rideway/rideway-backend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	// Initialize database with better error handling
	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize Redis (optional - matcher falls back to the DB scan)
	var geoIndex services.GeoIndex
	if err := services.InitRedis(); err != nil {
		log.Printf("Redis initialization warning: %v", err)
	} else {
		geoIndex = services.RedisGeoIndex{}
	}

	// Initialize Google Maps provider (optional - fare falls back to haversine)
	var mapsService *services.MapsService
	if apiKey := os.Getenv("MAPS_API_KEY"); apiKey != "" {
		mapsService, err = services.NewMapsService(apiKey)
		if err != nil {
			log.Printf("Maps initialization warning: %v", err)
		}
	} else {
		log.Println("MAPS_API_KEY not set, using haversine fare estimates only")
	}

	store := storage.NewGormStore(db)
	presence := services.NewRegistry(store, store)

	// Initialize WebSocket hub
	hub := services.NewHub(presence)
	go hub.Run()

	matcher := &services.Matcher{Captains: store, Geo: geoIndex}

	fareEstimator := &services.FareEstimator{}
	broadcaster := &services.Broadcaster{
		Matcher:  matcher,
		Presence: presence,
		Sender:   hub,
		Users:    store,
		RadiusKm: services.DefaultDispatchRadiusKm,
	}
	if mapsService != nil {
		fareEstimator.Routes = mapsService
		broadcaster.Geocoder = mapsService
	}

	rideService := &services.RideService{Rides: store, Fare: fareEstimator}

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Routes
	api := r.Group("/api")
	{
		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			rides := protected.Group("/rides")
			{
				rides.POST("", handlers.CreateRide(rideService, broadcaster))
				rides.GET("/fare", handlers.GetFare(fareEstimator))
				rides.POST("/confirm", handlers.ConfirmRide(rideService, presence, hub))
				rides.POST("/start", handlers.StartRide(rideService, presence, hub))
				rides.POST("/end", handlers.EndRide(rideService, presence, hub))
			}

			captain := protected.Group("/captain")
			{
				captain.POST("/location", handlers.UpdateCaptainLocation(presence))
			}

			maps := protected.Group("/maps")
			{
				maps.GET("/suggestions", handlers.GetSuggestions(mapsService))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
