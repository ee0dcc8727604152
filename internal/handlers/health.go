package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	Environment string            `json:"environment"`
}

// Health always answers 200 while the process is up; degraded dependencies
// are reported per check.
func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	checks := make(map[string]string, len(h.checks))
	for name, pinger := range h.checks {
		checks[name] = "ok"
		if err := pinger.Ping(ctx); err != nil {
			checks[name] = "error"
			status = "degraded"
			h.log.Error().Err(err).Str("check", name).Msg("health check failed")
		}
	}

	env := ""
	if h.cfg != nil {
		env = h.cfg.Environment
	}
	c.JSON(http.StatusOK, healthResponse{
		Status:      status,
		Checks:      checks,
		Environment: env,
	})
}
