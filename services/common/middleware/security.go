package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// SecurityHeaders sets the response headers every API reply carries.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per key (client IP, phone number).
// Buckets idle for longer than ttl are dropped by a background sweep.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rate    rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

func NewRateLimiter(r rate.Limit, burst int, ttl time.Duration) *RateLimiter {
	rl := &RateLimiter{
		entries: make(map[string]*limiterEntry),
		rate:    r,
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.ttl)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		now := rl.now()
		for k, e := range rl.entries {
			if now.Sub(e.lastSeen) > rl.ttl {
				delete(rl.entries, k)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow reports whether one more event for key fits in its bucket.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	e, ok := rl.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// TrustProxies sets which peers may report the client address through
// X-Forwarded-For. proxies is a comma separated list of IPs or CIDRs; an
// empty list trusts nobody and the client IP is the socket peer.
func TrustProxies(r *gin.Engine, proxies string) error {
	var list []string
	for _, p := range strings.Split(proxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return r.SetTrustedProxies(list)
}

// RateLimitMiddleware limits requests per client IP. The engine must have
// its trusted proxies set (TrustProxies), or forged X-Forwarded-For headers
// would each get a fresh bucket.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Trop de requêtes. Réessayez plus tard.",
			})
			return
		}
		c.Next()
	}
}

// CORS allows the storefront and admin front-ends to call the API with
// cookies. origins is a comma separated list; "*" reflects any origin.
func CORS(origins string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if strings.TrimSpace(origins) == "*" {
		cfg.AllowOriginFunc = func(string) bool { return true }
		return cors.New(cfg)
	}

	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSuffix(strings.TrimSpace(o), "/"); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	return cors.New(cfg)
}
