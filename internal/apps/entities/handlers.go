package entities

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/dto"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/schema"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store"
	"github.com/gofiber/fiber/v2"
)

const maxLimit = 100

type EntityHandler struct {
	store *store.Store
}

func NewEntityHandler(st *store.Store) *EntityHandler {
	return &EntityHandler{store: st}
}

func (h *EntityHandler) Schema(c *fiber.Ctx) error {
	sch, err := h.store.Schema(c.Params("kind"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(sch.JSONSchema())
}

func (h *EntityHandler) Create(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	var fields map[string]any
	if err := c.BodyParser(&fields); err != nil {
		return invalidBody(c)
	}

	rec, err := h.store.Create(c.UserContext(), who, c.Params("kind"), fields)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Record(rec))
}

func (h *EntityHandler) BulkCreate(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	var req dto.BulkCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	recs, err := h.store.BulkCreate(c.UserContext(), who, c.Params("kind"), req.Items)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Records(recs))
}

// List filters by every query parameter except sort and limit. Without
// criteria it returns all of the caller's records of the kind.
func (h *EntityHandler) List(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	kind := c.Params("kind")
	sch, err := h.store.Schema(kind)
	if err != nil {
		return err
	}

	opts := []store.FilterOption{store.SortBy(c.Query("sort"))}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return apperrors.Validation("limit", "must be a positive integer")
		}
		opts = append(opts, store.Limit(min(limit, maxLimit)))
	}

	criteria, err := criteriaFromQuery(sch, c.Queries())
	if err != nil {
		return err
	}

	var recs store.Records
	if len(criteria) == 0 {
		recs, err = h.store.Owned(c.UserContext(), who, kind, opts...)
	} else {
		recs, err = h.store.Filter(c.UserContext(), who, kind, criteria, opts...)
	}
	if err != nil {
		return err
	}
	return c.JSON(dto.Records(recs))
}

func (h *EntityHandler) Get(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	rec, err := h.store.Get(c.UserContext(), who, c.Params("kind"), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.Record(rec))
}

func (h *EntityHandler) Update(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	var patch map[string]any
	if err := c.BodyParser(&patch); err != nil {
		return invalidBody(c)
	}

	rec, err := h.store.Update(c.UserContext(), who, c.Params("kind"), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(dto.Record(rec))
}

// criteriaFromQuery converts query strings to the field's declared type.
// Unknown names pass through as strings so the store reports them.
func criteriaFromQuery(sch *schema.Schema, query map[string]string) (map[string]any, error) {
	out := make(map[string]any, len(query))
	for name, raw := range query {
		if name == "sort" || name == "limit" {
			continue
		}
		var typ schema.Type
		if f := sch.Field(name); f != nil {
			typ = f.Type
		} else if name == schema.FieldVersion {
			typ = schema.Integer
		}
		switch typ {
		case schema.Number, schema.Integer:
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, apperrors.Validation(name, "must be a number")
			}
			out[name] = n
		case schema.Boolean:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, apperrors.Validation(name, "must be true or false")
			}
			out[name] = b
		default:
			out[name] = raw
		}
	}
	return out, nil
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid request body",
	})
}
