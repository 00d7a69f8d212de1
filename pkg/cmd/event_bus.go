// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/pipewise/pipewise/pkg/channels/gochannel"
	"github.com/pipewise/pipewise/pkg/channels/kafka"
	"github.com/pipewise/pipewise/pkg/eventbus"
)

// NewEventBus creates the conversation event bus for the given provider.
// Events are advisory, so the default is the in-process channel; kafka is
// for deployments that fan notifications out to other services.
func NewEventBus(provider string, logger *slog.Logger) (eventbus.EventBus, error) {
	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), "pipewise")
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "", "gochannel":
		pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
