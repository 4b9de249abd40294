package careers

import (
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type CareersPlugin struct{}

func New() *CareersPlugin {
	return &CareersPlugin{}
}

func (p *CareersPlugin) ID() string { return "careers" }

func (p *CareersPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	svc := NewCareerService(deps.Store)
	handler := NewCareerHandler(svc)

	router.Get("/careers/:id/skill-gap", handler.SkillGap)
	router.Get("/learning-paths/:id/tracker", handler.Tracker)
}
