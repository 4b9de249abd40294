package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/config"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTProtected(cfg), ResolveIdentity(), func(c *fiber.Ctx) error {
		who, err := identity.Get(c)
		if err != nil {
			return err
		}
		return c.SendString(who.ID.String() + " " + who.DisplayName)
	})
	return app
}

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTProtected_ResolvesIdentity(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret"}
	app := protectedApp(cfg)
	id := uuid.New()

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, "secret", jwt.MapClaims{
		"sub": id.String(), "email": "ada@example.com", "name": "Ada",
		"exp": time.Now().Add(time.Minute).Unix(),
	}))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, id.String()+" Ada", string(body))
}

func TestJWTProtected_Rejects(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret"}
	app := protectedApp(cfg)

	cases := map[string]string{
		"missing":     "",
		"wrong key":   "Bearer " + sign(t, "other", jwt.MapClaims{"sub": uuid.NewString(), "exp": time.Now().Add(time.Minute).Unix()}),
		"expired":     "Bearer " + sign(t, "secret", jwt.MapClaims{"sub": uuid.NewString(), "exp": time.Now().Add(-time.Minute).Unix()}),
		"bad subject": "Bearer " + sign(t, "secret", jwt.MapClaims{"sub": "nobody", "exp": time.Now().Add(time.Minute).Unix()}),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}
