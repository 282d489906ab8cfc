package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-desk/internal/persistence"
)

// sweepHeartbeat is satisfied by the SLA sweep; its last completed pass feeds
// the readiness payload.
type sweepHeartbeat interface {
	LastRun() time.Time
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName   string
	version       string
	postgres      *persistence.Postgres
	redis         *persistence.Redis
	sweep         sweepHeartbeat
	sweepInterval time.Duration
}

// NewHealthHandler returns a new handler instance. A nil sweep marks the
// worker as disabled in readiness output.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis, sweep sweepHeartbeat, sweepInterval time.Duration) *HealthHandler {
	return &HealthHandler{
		serviceName:   serviceName,
		version:       version,
		postgres:      postgres,
		redis:         redis,
		sweep:         sweep,
		sweepInterval: sweepInterval,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies. A stale sweep is
// reported but does not fail readiness: the API can still serve traffic while
// the background worker catches up.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if err := h.postgres.Ping(ctx); err != nil {
		depStatus["postgres"] = err.Error()
		ready = false
	} else {
		depStatus["postgres"] = "ok"
	}

	if err := h.redis.Ping(ctx); err != nil {
		depStatus["redis"] = err.Error()
		ready = false
	} else {
		depStatus["redis"] = "ok"
	}

	depStatus["sla_sweep"] = h.sweepStatus(time.Now())

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}

func (h *HealthHandler) sweepStatus(now time.Time) string {
	if h.sweep == nil {
		return "disabled"
	}
	last := h.sweep.LastRun()
	if last.IsZero() {
		return "pending"
	}
	if h.sweepInterval > 0 && now.Sub(last) > 2*h.sweepInterval {
		return fmt.Sprintf("stale since %s", last.UTC().Format(time.RFC3339))
	}
	return "ok"
}
