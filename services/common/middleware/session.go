package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coradis/storefront/services/common/auth"
)

const (
	CustomerIDKey = "customer_id"
	AdminIDKey    = "admin_id"
	ClaimsKey     = "session_claims"
)

// OptionalCustomer attaches the customer id when a valid customer session is
// present and lets anonymous requests through.
func OptionalCustomer(s *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := s.FromCookie(c, auth.CustomerCookie, auth.TypeCustomer); err == nil {
			c.Set(CustomerIDKey, claims.Subject)
			c.Set(ClaimsKey, claims)
		}
		c.Next()
	}
}

// RequireCustomer rejects requests without a valid customer session.
func RequireCustomer(s *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := s.FromCookie(c, auth.CustomerCookie, auth.TypeCustomer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
			return
		}
		c.Set(CustomerIDKey, claims.Subject)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireAdmin rejects requests without a valid admin session.
func RequireAdmin(s *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := s.FromCookie(c, auth.AdminCookie, auth.TypeAdmin)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
			return
		}
		c.Set(AdminIDKey, claims.Subject)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
