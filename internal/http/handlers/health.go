package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// A Check reports whether one dependency is reachable.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthHandler struct {
	checks  []Check
	timeout time.Duration
}

func NewHealthHandler(checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: time.Second}
}

// Healthz is liveness only: the process is up.
func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	failed := make(map[string]string)

	for _, check := range h.checks {
		if err := check.Ping(c); err != nil {
			failed[check.Name] = err.Error()
		}
	}

	if len(failed) > 0 {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "failed": failed})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
