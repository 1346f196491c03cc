package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/RAYMONDNJOROGE/mpesa/internal/handler"
	"github.com/RAYMONDNJOROGE/mpesa/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	PaymentHandler *handler.PaymentHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API routes. Paths match what the payment form and Safaricom call.
	api := router.Group("/api")
	{
		api.POST("/stkpush", deps.PaymentHandler.InitiateSTKPush)
		api.POST("/mpesa_callback", deps.PaymentHandler.MpesaCallback)
		api.GET("/transactions/:id", deps.PaymentHandler.GetTransaction)
	}

	return router
}
