package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	awspkg "github.com/coradis/storefront/pkg/aws"
)

// MetricsMiddleware records request count, latency and error class per route.
func MetricsMiddleware(metrics *awspkg.MetricsClient, service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !metrics.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		dims := map[string]string{
			"Service": service,
			"Method":  c.Request.Method,
			"Route":   route,
			"Status":  statusClass(status),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = metrics.RecordCount(ctx, awspkg.MetricHTTPRequests, dims)
			_ = metrics.RecordLatency(ctx, awspkg.MetricHTTPLatency, elapsed, dims)
			switch {
			case status >= 500:
				_ = metrics.RecordCount(ctx, awspkg.MetricHTTP5xx, dims)
			case status >= 400:
				_ = metrics.RecordCount(ctx, awspkg.MetricHTTP4xx, dims)
			}
		}()
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "unknown"
	}
}
