package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"carshare/internal/handler"
	"carshare/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler    *handler.TripHandler
	VehicleHandler *handler.VehicleHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	trips := router.Group("/trips")
	{
		trips.POST("", deps.TripHandler.StartTrip)
		trips.GET("", deps.TripHandler.GetAll)
		trips.GET("/:id", deps.TripHandler.GetTrip)
		trips.PUT("/:id/activate", deps.TripHandler.ActivateTrip)
		trips.PUT("/:id/end", deps.TripHandler.EndTrip)
		trips.PUT("/:id/cancel", deps.TripHandler.CancelTrip)
	}

	router.GET("/users/:id/trips", deps.TripHandler.GetRiderTrips)

	vehicles := router.Group("/vehicles")
	{
		vehicles.GET("", deps.VehicleHandler.GetAll)
		vehicles.GET("/:id/data", deps.VehicleHandler.GetData)
		vehicles.POST("/:id/commands", deps.VehicleHandler.SendCommand)
	}

	return router
}
