package proxy

import (
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/coradis/storefront/services/common/logger"
)

var hopByHop = map[string]bool{
	"connection":          true,
	"keep-alive":          true,
	"proxy-authenticate":  true,
	"proxy-authorization": true,
	"te":                  true,
	"trailer":             true,
	"trailers":            true,
	"transfer-encoding":   true,
	"upgrade":             true,
}

// Forwarder relays requests to one upstream service. Cookies and
// Set-Cookie headers pass through untouched so session cookies keep working
// behind the gateway.
type Forwarder struct {
	target string
	prefix string
	client *http.Client
	log    *zap.Logger
}

// NewForwarder relays to target, prepending prefix to the matched wildcard.
func NewForwarder(target, prefix string, timeout time.Duration, log *zap.Logger) *Forwarder {
	return &Forwarder{
		target: strings.TrimSuffix(target, "/"),
		prefix: prefix,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

func (f *Forwarder) Handle(c *gin.Context) {
	targetURL := f.target + f.prefix + c.Param("any")
	if c.Request.URL.RawQuery != "" {
		targetURL += "?" + c.Request.URL.RawQuery
	}
	log := logger.For(c, f.log)

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, c.Request.Body)
	if err != nil {
		log.Error("failed to build upstream request", zap.String("url", targetURL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne du serveur"})
		return
	}
	req.ContentLength = c.Request.ContentLength
	for k, v := range c.Request.Header {
		if hopByHop[strings.ToLower(k)] {
			continue
		}
		req.Header[k] = v
	}
	req.Header.Set(logger.RequestIDHeader, logger.RequestIDFrom(c))
	if ip, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		if prior := c.GetHeader("X-Forwarded-For"); prior != "" {
			ip = prior + ", " + ip
		}
		req.Header.Set("X-Forwarded-For", ip)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		log.Error("upstream unreachable", zap.String("url", targetURL), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Service indisponible"})
		return
	}
	defer resp.Body.Close()

	for k, values := range resp.Header {
		lower := strings.ToLower(k)
		// CORS is answered by the gateway itself
		if hopByHop[lower] || strings.HasPrefix(lower, "access-control-") {
			continue
		}
		for _, v := range values {
			c.Writer.Header().Add(k, v)
		}
	}
	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		log.Warn("failed to copy upstream body", zap.Error(err))
	}
}
