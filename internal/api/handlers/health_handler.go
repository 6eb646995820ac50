package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	registry *terms.Registry
	deps     map[string]Pinger
}

// NewHealthHandler checks deps by name on /ready. A nil entry is skipped.
func NewHealthHandler(registry *terms.Registry, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{registry: registry, deps: deps}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	checks := fiber.Map{}
	ready := true

	if snap, err := h.registry.Current(); err != nil {
		checks["corpus"] = err.Error()
		ready = false
	} else {
		checks["corpus"] = fiber.Map{"version": snap.Version(), "terms": snap.Len()}
	}

	for name, dep := range h.deps {
		if dep == nil {
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	status := fiber.StatusOK
	state := "ready"
	if !ready {
		status = fiber.StatusServiceUnavailable
		state = "not_ready"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": state,
		"checks": checks,
	})
}
