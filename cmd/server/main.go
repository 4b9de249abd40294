package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apps"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apps/careers"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apps/entities"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apps/pageapi"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apps/uploads"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/completion"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/config"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/database"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/events"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/generation"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/logging"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/pages"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/routes"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/schema"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/services"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/storage"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store/memstore"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store/mongostore"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store/pgstore"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup("info")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}

	ctx := context.Background()

	// Database (users, refresh tokens, system logs)
	if err := database.Connect(cfg.DSN()); err != nil {
		slog.Error("database connection failed", "error", err.Error())
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err.Error())
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	logger := logging.Setup(cfg.LogLevel, pgLogHandler)

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Entity events
	publisher, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		slog.Error("event publisher setup failed", "error", err.Error())
		os.Exit(1)
	}

	// Entity store
	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		slog.Error("entity store setup failed", "backend", cfg.StoreBackend, "error", err.Error())
		os.Exit(1)
	}
	entityStore := store.New(schema.MustDefault(), backend,
		store.WithPublisher(publisher),
		store.WithLogger(logger),
	)
	slog.Info("entity store ready", "backend", cfg.StoreBackend)

	healthChecks := map[string]handlers.Pinger{"store": entityStore.Ping}

	// Uploads
	var uploader storage.Uploader
	if cfg.MinIOEndpoint != "" {
		m, err := storage.NewMinIO(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			PublicURL: cfg.MinIOPublicURL,
		})
		if err != nil {
			slog.Error("MinIO setup failed", "error", err.Error())
			os.Exit(1)
		}
		uploader = m
		healthChecks["uploads"] = m.Ping
	} else {
		slog.Warn("MINIO_ENDPOINT is empty, uploads are kept in memory")
		uploader = storage.NewMemory("http://localhost:" + cfg.Port + "/api/p/files")
	}

	// Completion + generation
	chain := completion.FromConfig(cfg, logger)
	if !chain.Configured() {
		slog.Warn("no completion provider configured, interview questions and resume tips use the demo catalog")
	} else {
		slog.Info("completion providers configured", "providers", chain.Providers())
	}
	generator := generation.New(entityStore, chain,
		generation.WithUploads(uploader),
		generation.WithLogger(logger),
	)

	// Page state
	var states pages.StateStore
	if cfg.RedisAddr != "" {
		client, err := pages.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Error("redis connection failed", "error", err.Error())
			os.Exit(1)
		}
		defer client.Close()
		redisStates := pages.NewRedisStates(client, cfg.PageStateTTL)
		states = redisStates
		healthChecks["page_state"] = redisStates.Ping
	} else {
		states = pages.NewMemoryStates()
	}
	controller := pages.NewController(entityStore, generator, states, pages.WithLogger(logger))

	deps := &apps.Deps{
		Config:    cfg,
		Store:     entityStore,
		Generator: generator,
		Pages:     controller,
		Uploads:   uploader,
	}

	plugins := []apps.Plugin{
		entities.New(),
		uploads.New(),
		pageapi.New(),
		careers.New(),
	}
	for _, p := range plugins {
		slog.Info("plugin registered", "plugin", p.ID())
	}

	// Services
	authService := services.NewAuthService(database.DB, cfg,
		entityStore.DeleteOwner,
		func(ctx context.Context, who identity.Identity) error {
			return controller.DeleteOwner(ctx, who.ID)
		},
	)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(healthChecks, chain.Configured())

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
		}); err != nil {
			slog.Error("sentry init failed", "error", err.Error())
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app; leaves room for a 10 MiB resume plus multipart overhead
	app := fiber.New(fiber.Config{
		BodyLimit:    storage.MaxUploadSize + 1024*1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, deps, authHandler, healthHandler, plugins)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "cors_origins", cfg.Origins())
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err.Error())
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err.Error())
	}

	close(cleanupDone)
	if err := publisher.Close(); err != nil {
		slog.Warn("event publisher close error", "error", err.Error())
	}
	if err := closeBackend(context.Background()); err != nil {
		slog.Warn("entity store close error", "error", err.Error())
	}
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err.Error())
	}

	slog.Info("server stopped")
}

// openBackend picks the entity store backend named by STORE_BACKEND.
func openBackend(ctx context.Context, cfg *config.Config) (store.Backend, func(context.Context) error, error) {
	noClose := func(context.Context) error { return nil }

	switch cfg.StoreBackend {
	case config.BackendMongo:
		b, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	case config.BackendMemory:
		slog.Warn("entity records are kept in memory and lost on restart")
		return memstore.New(), noClose, nil
	default:
		b := pgstore.New(database.DB)
		if err := b.Migrate(); err != nil {
			return nil, nil, err
		}
		return b, noClose, nil
	}
}
