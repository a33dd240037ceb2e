package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coradis/storefront/api-gateway/proxy"
	"github.com/coradis/storefront/services/common/auth"
	"github.com/coradis/storefront/services/common/middleware"
)

type Upstreams struct {
	Storefront    *proxy.Forwarder
	Notifications *proxy.Forwarder
}

func RegisterRoutes(r *gin.Engine, up Upstreams, sessions *auth.Sessions) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "api-gateway"})
	})

	// The storefront enforces its own customer and admin sessions.
	r.Any("/api/*any", up.Storefront.Handle)

	// Admin only
	r.GET("/notifications/*any", middleware.RequireAdmin(sessions), up.Notifications.Handle)
}
