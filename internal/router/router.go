package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mealmind/mealmind-backend/internal/api"
	"github.com/mealmind/mealmind-backend/internal/database"
	"github.com/mealmind/mealmind-backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	db *gorm.DB,
	authHandler *api.AuthHandler,
	analysisHandler *api.AnalysisHandler,
	progressHandler *api.ProgressHandler,
	goalsHandler *api.GoalsHandler,
	notificationsHandler *api.NotificationsHandler,
	validator middleware.TokenValidator,
	analysisLimit gin.HandlerFunc,
) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")

	authHandler.RegisterRoutes(v1)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(validator))
	{
		analysisHandler.RegisterRoutes(protected, analysisLimit)
		progressHandler.RegisterRoutes(protected)
		goalsHandler.RegisterRoutes(protected)
		notificationsHandler.RegisterRoutes(protected)
	}

	return router
}
