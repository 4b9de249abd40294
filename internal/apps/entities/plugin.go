package entities

import (
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type EntitiesPlugin struct{}

func New() *EntitiesPlugin {
	return &EntitiesPlugin{}
}

func (p *EntitiesPlugin) ID() string { return "entities" }

func (p *EntitiesPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewEntityHandler(deps.Store)

	router.Get("/schemas/:kind", handler.Schema)

	router.Post("/entities/:kind", handler.Create)
	router.Post("/entities/:kind/bulk", handler.BulkCreate)
	router.Get("/entities/:kind", handler.List)
	router.Get("/entities/:kind/:id", handler.Get)
	router.Patch("/entities/:kind/:id", handler.Update)
}
