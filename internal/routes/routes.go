package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apps"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	deps *apps.Deps,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	plugins []apps.Plugin,
) {
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// JWT on individual routes so public auth routes stay open
	protect := []fiber.Handler{middleware.JWTProtected(deps.Config), middleware.ResolveIdentity()}
	api.Post("/auth/logout", append(protect, authHandler.Logout)...)
	api.Get("/auth/me", append(protect, authHandler.Me)...)
	api.Delete("/auth/account", append(protect, authHandler.DeleteAccount)...)

	protected := api.Group("/p", protect...)
	for _, p := range plugins {
		p.RegisterRoutes(protected, deps)
	}
}
