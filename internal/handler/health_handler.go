package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careconnect/booking-service/pkg/database"
	"github.com/careconnect/booking-service/pkg/redis"
)

// HealthHandler serves the liveness and readiness probes
type HealthHandler struct {
	db    *database.PostgresDB
	redis *redis.Client
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *database.PostgresDB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redis,
	}
}

// HealthResponse represents the liveness response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadyResponse represents the readiness response
type ReadyResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Components map[string]string `json:"components"`
}

// Health is the liveness probe. It only proves the process is serving.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type componentCheck struct {
	name  string
	check func(context.Context) error
}

// Ready is the readiness probe. Postgres is required; Redis only degrades
// caching and idempotency, but a dead connection still fails readiness
// so the instance gets pulled before bookings start missing dedup.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := []componentCheck{}
	if h.db != nil {
		checks = append(checks, componentCheck{"database", h.db.HealthCheck})
	}
	if h.redis != nil {
		checks = append(checks, componentCheck{"redis", h.redis.HealthCheck})
	}

	components := make(map[string]string, len(checks))
	ready := h.db != nil
	if h.db == nil {
		components["database"] = "not configured"
	}

	for _, chk := range checks {
		if err := chk.check(ctx); err != nil {
			components[chk.name] = "unhealthy: " + err.Error()
			ready = false
			continue
		}
		components[chk.name] = "healthy"
	}

	resp := ReadyResponse{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}

	if !ready {
		resp.Status = "not ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	resp.Status = "ready"
	c.JSON(http.StatusOK, resp)
}
