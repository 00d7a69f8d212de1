package main

import (
	"context"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/pipewise/pipewise/pkg/cmd"
	"github.com/pipewise/pipewise/pkg/conversation"
	"github.com/pipewise/pipewise/pkg/log"
	"github.com/pipewise/pipewise/pkg/otelhelper"
)

const defaultPort = 9080

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "pipewise-api",
		Usage:                 "Configure data pipelines through conversation",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Storage URL (file://, redis:// or postgres://)",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:     "openai-api-key",
				Usage:    "API key for the model provider",
				Required: true,
				Sources:  cli.EnvVars("OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "openai-base-url",
				Usage:   "Alternative OpenAI-compatible endpoint",
				Sources: cli.EnvVars("OPENAI_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "models",
				Usage:   "Comma-separated model fallback chain",
				Value:   "gpt-4o,gpt-4o-mini",
				Sources: cli.EnvVars("PIPEWISE_MODELS"),
			},
			&cli.BoolFlag{
				Name:    "parallel-mode",
				Usage:   "Run prose and structure model calls in parallel",
				Sources: cli.EnvVars("PIPEWISE_PARALLEL_MODE"),
			},
			&cli.DurationFlag{
				Name:    "retention",
				Usage:   "Delete conversations idle longer than this",
				Value:   720 * time.Hour,
				Sources: cli.EnvVars("PIPEWISE_RETENTION"),
			},
			&cli.StringFlag{
				Name:    "sweep-schedule",
				Usage:   "Cron schedule for the retention sweep",
				Value:   "@hourly",
				Sources: cli.EnvVars("PIPEWISE_SWEEP_SCHEDULE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("PIPEWISE_TRACING"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Pipewise API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			client, err := cmd.NewModelClient(
				command.String("openai-api-key"),
				command.String("models"),
				command.String("openai-base-url"),
				logger,
			)
			if err != nil {
				return err
			}

			err = client.Validate(ctx)
			if err != nil {
				return err
			}

			repository := conversation.NewRepository(persistence)

			options := []conversation.Option{
				conversation.WithEventPublisher(eventBus),
			}

			if command.Bool("parallel-mode") {
				options = append(options, conversation.WithDualGenerator(client))
			}

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "pipewise-api")
				if err != nil {
					return err
				}

				options = append(options, conversation.WithTracer(tracer))
			}

			orchestrator := conversation.NewOrchestrator(repository, client, logger, options...)

			sweeper, err := conversation.NewSweeper(
				repository,
				command.Duration("retention"),
				command.String("sweep-schedule"),
				logger,
			)
			if err != nil {
				return err
			}

			err = sweeper.Start(ctx)
			if err != nil {
				return err
			}

			defer func() {
				if err := sweeper.Stop(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to stop retention sweeper", "error", err)
				}
			}()

			api := NewAPI(logger, orchestrator, repository, client)

			return api.Start(command.Int("port"))
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
