package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	TypeCustomer = "customer"
	TypeAdmin    = "admin"

	CustomerCookie = "customer_session"
	AdminCookie    = "admin_session"

	CustomerSessionTTL = 30 * 24 * time.Hour
	AdminSessionTTL    = 7 * 24 * time.Hour
)

var ErrInvalidSession = errors.New("invalid or expired session")

// Claims is the payload of a session cookie.
type Claims struct {
	Type     string `json:"typ"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// Sessions signs and verifies session tokens with an HMAC secret.
type Sessions struct {
	secret []byte
	secure bool
	now    func() time.Time
}

// NewSessions returns a signer. secure controls the Secure flag on cookies and
// should be true whenever the site is served over HTTPS.
func NewSessions(secret string, secure bool) (*Sessions, error) {
	if secret == "" {
		return nil, errors.New("session secret not configured")
	}
	return &Sessions{secret: []byte(secret), secure: secure, now: time.Now}, nil
}

func (s *Sessions) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Parse verifies the token and checks that its "typ" claim is expectedType.
func (s *Sessions) Parse(tokenStr, expectedType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	if claims.Subject == "" || claims.Type != expectedType {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// SetCookie writes an httpOnly, SameSite=Lax session cookie.
func (s *Sessions) SetCookie(c *gin.Context, name, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, token, int(ttl.Seconds()), "/", "", s.secure, true)
}

func (s *Sessions) ClearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", s.secure, true)
}

// FromCookie reads and verifies the named cookie.
func (s *Sessions) FromCookie(c *gin.Context, name, expectedType string) (*Claims, error) {
	raw, err := c.Cookie(name)
	if err != nil || raw == "" {
		return nil, ErrInvalidSession
	}
	return s.Parse(raw, expectedType)
}
