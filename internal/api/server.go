// Package api assembles the HTTP and WebSocket surface of the service.
package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/sga-feedback/backend/internal/api/handlers"
	"github.com/sga-feedback/backend/internal/extension"
	"github.com/sga-feedback/backend/internal/metrics"
	"github.com/sga-feedback/backend/internal/middleware/ratelimit"
	"github.com/sga-feedback/backend/internal/middleware/security"
	"github.com/sga-feedback/backend/internal/middleware/validation"
	"github.com/sga-feedback/backend/internal/settings"
)

type Options struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	BodyLimit      int
	AllowedOrigins []string
	Development    bool
	AccessLog      bool
	Logger         *zap.Logger
}

type Deps struct {
	Submitter   handlers.Submitter
	History     handlers.HistoryReader
	Settings    *settings.Store
	Router      *extension.Router
	RateLimiter *ratelimit.RateLimiter
}

func New(opts Options, deps Deps) *fiber.App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		BodyLimit:             opts.BodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(fiberlogger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins(opts.AllowedOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, " + ratelimit.ClientHeader,
		AllowMethods: "GET, POST, PUT, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: opts.AllowedOrigins,
		IsDevelopment:  opts.Development,
	}))

	app.Get("/metrics", metrics.MetricsHandler())

	feedbackHandler := handlers.NewFeedbackHandler(deps.Submitter, deps.History)
	settingsHandler := handlers.NewSettingsHandler(deps.Settings)
	selectionHandler := handlers.NewSelectionHandler()
	messageHandler := handlers.NewMessageHandler(deps.Router)

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	api.Get("/ws", messageHandler.Upgrade, websocket.New(messageHandler.HandleConnection))

	guarded := api.Group("")
	if deps.RateLimiter != nil {
		guarded.Use(deps.RateLimiter.Middleware())
	}
	guarded.Use(validation.Middleware(validation.Config{Logger: opts.Logger}))

	guarded.Post("/feedback", feedbackHandler.Submit)
	guarded.Get("/feedback/history", feedbackHandler.GetHistory)
	guarded.Get("/settings", settingsHandler.GetSettings)
	guarded.Put("/settings", settingsHandler.UpdateSettings)
	guarded.Post("/selection", selectionHandler.Extract)

	return app
}

func allowOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ", ")
}
