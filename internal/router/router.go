package router

import (
	"github.com/gin-gonic/gin"

	"github.com/stepguard/approval-api/internal/config"
	"github.com/stepguard/approval-api/internal/handlers"
	"github.com/stepguard/approval-api/internal/middleware"
)

// SetupRouter configures all API routes
func SetupRouter(
	authorizationHandler *handlers.AuthorizationHandler,
	adminHandler *handlers.AdminHandler,
	securityCfg *config.SecurityConfig,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Client poller protocol
		v1.POST("/authorizations", authorizationHandler.CreateAuthorization)
		v1.GET("/authorizations/:requestId/status", authorizationHandler.CheckAuthorizationStatus)

		// Admin decision surface
		admin := v1.Group("/admin", middleware.AdminAuth(securityCfg))
		{
			admin.GET("/requests", adminHandler.ListRequests)
			admin.POST("/requests/:requestId/decision", adminHandler.DecideRequest)
			admin.GET("/activity/summary", adminHandler.ActivitySummary)
		}
	}

	return router
}
