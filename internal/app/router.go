package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"greenride/internal/handler"
	"greenride/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	DriverHandler       *handler.DriverHandler
	RiderHandler        *handler.RiderHandler
	TripHandler         *handler.TripHandler
	NotificationHandler *handler.NotificationHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check and metrics.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes. Everything past here requires a caller identity.
	v1 := router.Group("/v1")
	v1.Use(middleware.IdentityMiddleware())
	{
		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/online", deps.DriverHandler.SetOnline)
			drivers.POST("/offline", deps.DriverHandler.SetOffline)
			drivers.POST("/location", deps.DriverHandler.UpdateLocation)
			drivers.POST("/respond", deps.DriverHandler.Respond)
			drivers.POST("/withdraw", deps.DriverHandler.Withdraw)
			drivers.GET("/requests", deps.DriverHandler.IncomingRequests)
			drivers.GET("/offers", deps.DriverHandler.AvailableOffers)
			drivers.GET("/nearby", deps.DriverHandler.Nearby)
			drivers.GET("/:id", deps.DriverHandler.GetPresence)
		}

		// Offer routes (rider side of the board).
		offers := v1.Group("/offers")
		{
			offers.POST("", deps.RiderHandler.PostOffer)
			offers.GET("/active", deps.RiderHandler.ActiveOffer)
			offers.GET("/:id", deps.RiderHandler.GetOffer)
			offers.DELETE("/:id", deps.RiderHandler.WithdrawOffer)
			offers.POST("/:id/response", deps.RiderHandler.Respond)
		}

		// Rider routes.
		riders := v1.Group("/riders")
		{
			riders.POST("/location", deps.RiderHandler.UpdateLocation)
		}

		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.GET("", deps.TripHandler.History)
			trips.POST("/:id/cancel", deps.TripHandler.Cancel)
			trips.GET("/:id/live-driver", deps.TripHandler.LiveDriver)
			trips.GET("/:id/live-rider", deps.TripHandler.LiveRider)
		}

		// Analytics routes.
		analytics := v1.Group("/analytics")
		{
			analytics.GET("/summary", deps.TripHandler.Summary)
		}

		// Notification routes.
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", deps.NotificationHandler.List)
			notifications.POST("/:id/read", deps.NotificationHandler.MarkRead)
		}
	}

	return router
}
