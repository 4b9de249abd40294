package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/database"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	dbPing     func() error
	backends   map[string]Pinger
	completion bool
}

// NewHealthHandler checks the account database plus the named backends
// (entity store, page state, uploads). completion reports whether a
// completion provider is configured.
func NewHealthHandler(backends map[string]Pinger, completion bool) *HealthHandler {
	return &HealthHandler{dbPing: database.Ping, backends: backends, completion: completion}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	status := "ok"
	dbStatus := "ok"
	if err := h.dbPing(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
		status = "degraded"
	}

	names := make([]string, 0, len(h.backends))
	for name := range h.backends {
		names = append(names, name)
	}
	sort.Strings(names)

	backends := make(map[string]string, len(names))
	for _, name := range names {
		backends[name] = "ok"
		if err := h.backends[name](ctx); err != nil {
			backends[name] = "unhealthy: " + err.Error()
			status = "degraded"
		}
	}

	return c.JSON(dto.HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		DB:         dbStatus,
		Backends:   backends,
		Completion: h.completion,
	})
}
