package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/dto"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// StatusFor maps the error taxonomy to HTTP status codes.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, apperrors.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrAuthentication):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, apperrors.ErrTransport):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler is the Fiber error handler. Client errors carry their
// message; 5xx details are hidden and reported to Sentry.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := StatusFor(err)
	message := err.Error()

	if code >= fiber.StatusInternalServerError {
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		slog.Error("request failed",
			"request_id", requestID(c),
			"action", c.Method()+" "+c.Route().Path,
			"status", code,
			"error", err.Error(),
		)
		switch code {
		case fiber.StatusBadGateway:
			message = "Upstream service unavailable"
		default:
			message = "Internal server error"
		}
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
