package careers

import (
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/gofiber/fiber/v2"
)

type CareerHandler struct {
	service *CareerService
}

func NewCareerHandler(service *CareerService) *CareerHandler {
	return &CareerHandler{service: service}
}

func (h *CareerHandler) SkillGap(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	gap, err := h.service.SkillGap(c.UserContext(), who, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(gap)
}

func (h *CareerHandler) Tracker(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	tracker, err := h.service.Tracker(c.UserContext(), who, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(tracker)
}
