package pageapi

import (
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/career"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/dto"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/generation"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/pages"
	"github.com/gofiber/fiber/v2"
)

type PageHandler struct {
	pages *pages.Controller
	gen   *generation.Service
}

func NewPageHandler(controller *pages.Controller, gen *generation.Service) *PageHandler {
	return &PageHandler{pages: controller, gen: gen}
}

func (h *PageHandler) List(c *fiber.Ctx) error {
	return c.JSON(dto.PagesResponse{Pages: h.pages.Names()})
}

func (h *PageHandler) Mount(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	view, err := h.pages.Mount(c.UserContext(), who, c.Params("page"))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *PageHandler) Current(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	view, err := h.pages.Current(c.UserContext(), who, c.Params("page"))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *PageHandler) Select(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	var req dto.SelectRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	view, err := h.pages.Select(c.UserContext(), who, c.Params("page"), req.ID)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *PageHandler) SetFilters(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	var req dto.FiltersRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	view, err := h.pages.SetFilters(c.UserContext(), who, c.Params("page"), req.Search, req.Filters)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// Generate answers with the view even when the flow fails; the failure
// is carried in the view's error banner.
func (h *PageHandler) Generate(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	args, err := parseArgs(c)
	if err != nil {
		return invalidBody(c)
	}

	view, err := h.pages.Generate(c.UserContext(), who, c.Params("page"), c.Params("flow"), args)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *PageHandler) SetStatus(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	var req dto.StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	view, err := h.pages.SetStatus(c.UserContext(), who, c.Params("page"), pages.StatusChange{
		ID:     req.ID,
		Action: career.Action(req.Action),
	})
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *PageHandler) Flows(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"flows":      generation.Flows(),
		"configured": h.gen.Configured(),
	})
}

// RunFlow runs a generation flow outside any page and returns its result.
// Unlike page generation, failures surface as error responses.
func (h *PageHandler) RunFlow(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	args, err := parseArgs(c)
	if err != nil {
		return invalidBody(c)
	}

	res, err := h.gen.Generate(c.UserContext(), who, c.Params("flow"), args)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// parseArgs accepts an empty body for flows without arguments.
func parseArgs(c *fiber.Ctx) (generation.Args, error) {
	var args generation.Args
	if len(c.Body()) == 0 {
		return args, nil
	}
	err := c.BodyParser(&args)
	return args, err
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid request body",
	})
}
