package identity

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromClaims(t *testing.T) {
	id := uuid.New()

	got, err := FromClaims(jwt.MapClaims{"sub": id.String(), "email": "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "ada", got.DisplayName)

	got, err = FromClaims(jwt.MapClaims{"sub": id.String(), "email": "ada@example.com", "name": "Ada L."})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.DisplayName)

	_, err = FromClaims(jwt.MapClaims{"email": "ada@example.com"})
	assert.Error(t, err)
}

func TestRequire(t *testing.T) {
	assert.True(t, errors.Is(Identity{}.Require(), apperrors.ErrAuthentication))
	assert.NoError(t, Identity{ID: uuid.New()}.Require())
}

func TestGet_FromJWTLocals(t *testing.T) {
	id := uuid.New()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"sub": id.String(), "email": "x@y.z"}})
		got, err := Get(c)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(got.ID.String())
	})
	app.Get("/anon", func(c *fiber.Ctx) error {
		_, err := Get(c)
		if errors.Is(err, apperrors.ErrAuthentication) {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/anon", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
