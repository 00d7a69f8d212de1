package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pipewise/pipewise/pkg/persistence"
	"github.com/pipewise/pipewise/pkg/persistence/file"
	"github.com/pipewise/pipewise/pkg/persistence/postgresql"
	"github.com/pipewise/pipewise/pkg/persistence/redis"
)

// NewPersistence selects a storage backend from the database URL scheme.
// postgres:// and redis:// URLs get their dedicated backends; anything else
// is treated as a file root.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case "redis":
		return redis.NewPersistence(ctx, databaseURL)
	default:
		p, err := file.NewPersistence(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create file persistence: %w", err)
		}

		return p, nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	parts := strings.SplitN(databaseURL, "://", 2)
	if len(parts) < 2 {
		return "file"
	}

	return parts[0]
}
