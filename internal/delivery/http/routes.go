package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smartshop/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger logrus.FieldLogger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxBytes

	// Global middleware
	router.Use(LoggerMiddleware(logger))
	router.Use(RecoveryMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(NewIPRateLimiter(cfg.RateLimit.PerIP)))
	{
		v1.POST("/find-by-url", handler.FindByURL)
		v1.POST("/find-by-image", handler.FindByImage)
	}

	return router
}
