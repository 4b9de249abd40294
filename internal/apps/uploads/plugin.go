package uploads

import (
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type UploadsPlugin struct{}

func New() *UploadsPlugin {
	return &UploadsPlugin{}
}

func (p *UploadsPlugin) ID() string { return "uploads" }

func (p *UploadsPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewUploadHandler(deps.Uploads)
	router.Post("/uploads", handler.Upload)
	router.Get("/files/*", handler.Download)
}
