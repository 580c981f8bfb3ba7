package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthProbeTimeout = 5 * time.Second

// healthHandler handles GET /health: probes every registered dependency and
// degrades the overall status when any probe fails.
func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()

	resp := HealthResponse{
		Status: "healthy",
		Checks: make(map[string]HealthCheckResult, len(s.checks)),
	}

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			resp.Status = "degraded"
			resp.Checks[name] = HealthCheckResult{Status: "unhealthy", Message: err.Error()}
			continue
		}
		resp.Checks[name] = HealthCheckResult{Status: "healthy"}
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}
