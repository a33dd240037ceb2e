package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is any backing store that can report liveness.
type Pinger func(ctx context.Context) error

type HealthController struct {
	service string
	checks  map[string]Pinger
}

func NewHealthController(service string, checks map[string]Pinger) *HealthController {
	return &HealthController{service: service, checks: checks}
}

// Health handles GET /health.
func (hc *HealthController) Health(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	deps := make(map[string]string, len(hc.checks))
	for name, ping := range hc.checks {
		if err := ping(c); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	ctx.JSON(code, gin.H{"status": status, "service": hc.service, "dependencies": deps})
}
