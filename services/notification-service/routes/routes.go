package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coradis/storefront/services/common/auth"
	"github.com/coradis/storefront/services/common/middleware"
	"github.com/coradis/storefront/services/notification-service/controllers"
)

func RegisterRoutes(router *gin.Engine, controller *controllers.NotificationController, sessions *auth.Sessions) {
	// Public
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "notification-service"})
	})

	// Admin only
	admin := router.Group("/notifications", middleware.RequireAdmin(sessions))
	{
		admin.GET("/log", controller.GetNotificationLogs)
	}
}
