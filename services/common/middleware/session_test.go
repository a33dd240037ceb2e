package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coradis/storefront/services/common/auth"
)

func sessionRouter(t *testing.T) (*gin.Engine, *auth.Sessions) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s, err := auth.NewSessions("secret", false)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/customer", RequireCustomer(s), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CustomerIDKey))
	})
	r.GET("/admin", RequireAdmin(s), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(AdminIDKey))
	})
	r.GET("/optional", OptionalCustomer(s), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CustomerIDKey))
	})
	return r, s
}

func cookieFor(t *testing.T, s *auth.Sessions, name, typ, sub string) *http.Cookie {
	t.Helper()
	token, err := s.Issue(auth.Claims{Type: typ, RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: name, Value: token}
}

func TestRequireCustomer(t *testing.T) {
	r, s := sessionRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/customer", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/customer", nil)
	req.AddCookie(cookieFor(t, s, auth.CustomerCookie, auth.TypeCustomer, "abc"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", w.Body.String())
}

func TestRequireAdmin_RejectsCustomerToken(t *testing.T) {
	r, s := sessionRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookieFor(t, s, auth.AdminCookie, auth.TypeCustomer, "abc"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalCustomer_Anonymous(t *testing.T) {
	r, _ := sessionRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/optional", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}
