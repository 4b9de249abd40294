// Package pageapi exposes the page controllers and the generation flows
// over HTTP.
package pageapi

import (
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type PagesPlugin struct{}

func New() *PagesPlugin {
	return &PagesPlugin{}
}

func (p *PagesPlugin) ID() string { return "pages" }

func (p *PagesPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewPageHandler(deps.Pages, deps.Generator)

	router.Get("/pages", handler.List)
	router.Get("/pages/:page", handler.Current)
	router.Post("/pages/:page/mount", handler.Mount)
	router.Post("/pages/:page/select", handler.Select)
	router.Post("/pages/:page/filters", handler.SetFilters)
	router.Post("/pages/:page/generate/:flow", handler.Generate)
	router.Post("/pages/:page/status", handler.SetStatus)

	router.Get("/flows", handler.Flows)
	router.Post("/flows/:flow", handler.RunFlow)
}
