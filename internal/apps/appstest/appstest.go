// Package appstest mounts plugins on a Fiber app backed by in-memory
// services for handler tests.
package appstest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apps"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/completion"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/config"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/generation"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/pages"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/storage"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store/memstore"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store/storetest"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// UserHeader switches the request identity to another user id.
const UserHeader = "X-Test-User"

type Env struct {
	App     *fiber.App
	Deps    *apps.Deps
	Backend *memstore.Backend
	Who     identity.Identity
}

// New mounts plugins under /api/p. completer may be nil for plugins that
// never generate.
func New(t *testing.T, completer completion.Completer, plugins ...apps.Plugin) *Env {
	t.Helper()

	backend := memstore.New()
	st, _ := storetest.NewStore(t, backend)
	if completer == nil {
		completer = &completion.Mock{}
	}
	uploads := storage.NewMemory("http://files.test/api/p/files")
	gen := generation.New(st, completer, generation.WithUploads(uploads), generation.WithClock(storetest.Clock()))

	env := &Env{
		Backend: backend,
		Who:     storetest.NewUser(),
		Deps: &apps.Deps{
			Config:    &config.Config{JWTSecret: "test"},
			Store:     st,
			Generator: gen,
			Pages:     pages.NewController(st, gen, pages.NewMemoryStates()),
			Uploads:   uploads,
		},
	}

	env.App = fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	router := env.App.Group("/api/p", func(c *fiber.Ctx) error {
		who := env.Who
		if raw := c.Get(UserHeader); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return c.SendStatus(fiber.StatusUnauthorized)
			}
			who = identity.Identity{ID: id, Email: "other@example.com", DisplayName: "other"}
		}
		identity.Set(c, who)
		return c.Next()
	})
	for _, p := range plugins {
		p.RegisterRoutes(router, env.Deps)
	}
	return env
}

// JSON sends body as JSON and decodes the response into out when out is
// not nil. It returns the status code.
func (e *Env) JSON(t *testing.T, method, path string, body any, out any, headers ...string) int {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return e.Do(t, req, out)
}

// Do runs req against the app.
func (e *Env) Do(t *testing.T, req *http.Request, out any) int {
	t.Helper()

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}
