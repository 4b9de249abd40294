package middleware

import (
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/config"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/dto"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c, "Unauthorized: invalid or expired token")
		},
	})
}

// ResolveIdentity turns the verified token into an identity.Identity once
// per request. Handlers read it back with identity.Get.
func ResolveIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		who, err := identity.Get(c)
		if err != nil {
			return unauthorized(c, "Unauthorized: invalid token claims")
		}
		identity.Set(c, who)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
