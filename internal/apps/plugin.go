package apps

import (
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/config"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/generation"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/pages"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/storage"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store"
	"github.com/gofiber/fiber/v2"
)

// Deps are the shared services handed to every plugin.
type Deps struct {
	Config    *config.Config
	Store     *store.Store
	Generator *generation.Service
	Pages     *pages.Controller
	Uploads   storage.Uploader
}

// Plugin defines the interface every feature must implement.
type Plugin interface {
	// ID returns the unique feature identifier, used in startup logs.
	ID() string

	// RegisterRoutes mounts feature routes on the given Fiber group.
	// The group is already prefixed with /api/p and resolves the
	// current identity.
	RegisterRoutes(router fiber.Router, deps *Deps)
}
