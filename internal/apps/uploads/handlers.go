package uploads

import (
	"path"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/dto"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type UploadHandler struct {
	uploads storage.Uploader
}

func NewUploadHandler(uploads storage.Uploader) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Upload stores the multipart "file" field and returns its file_url.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "A file is required",
		})
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	ref, err := h.uploads.Upload(c.UserContext(), who.ID, fh.Filename, fh.Header.Get(fiber.HeaderContentType), f, fh.Size)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ref)
}

// Download streams one of the caller's own uploads back.
func (h *UploadHandler) Download(c *fiber.Ctx) error {
	who, err := identity.Get(c)
	if err != nil {
		return err
	}

	key, ok := storage.KeyFromURL(c.Params("*"), who.ID)
	if !ok {
		return apperrors.NotFound("file", c.Params("*"))
	}

	rc, err := h.uploads.Open(c.UserContext(), key)
	if err != nil {
		return err
	}
	c.Type(path.Ext(key))
	return c.SendStream(rc)
}
