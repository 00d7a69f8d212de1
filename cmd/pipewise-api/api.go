// Package main provides the Pipewise API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/pipewise/pipewise/pkg/conversation"
	"github.com/pipewise/pipewise/pkg/web"
)

type API struct {
	logger     *slog.Logger
	engine     web.Engine
	repository *conversation.Repository
	model      web.ModelChecker
	validate   *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	engine web.Engine,
	repository *conversation.Repository,
	model web.ModelChecker,
) *API {
	return &API{
		logger:     logger,
		engine:     engine,
		repository: repository,
		model:      model,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.engine, a.repository, a.model, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Pipewise API")
	})

	conversations := app.Group("/conversations")
	conversations.Get("/", handlers.ListConversations)
	conversations.Get("/:id", handlers.GetConversation)
	conversations.Post("/:id/messages", handlers.PostMessage)
	conversations.Delete("/:id", handlers.DeleteConversation)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
