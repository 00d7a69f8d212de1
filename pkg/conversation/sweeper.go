package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper deletes conversations that have been idle longer than the
// retention window. It runs on a cron schedule.
type Sweeper struct {
	repository *Repository
	retention  time.Duration
	schedule   string
	cron       *cron.Cron
	logger     *slog.Logger
}

func NewSweeper(repository *Repository, retention time.Duration, schedule string, logger *slog.Logger) (*Sweeper, error) {
	if retention <= 0 {
		return nil, errors.New("retention must be positive")
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule: %w", err)
	}

	return &Sweeper{
		repository: repository,
		retention:  retention,
		schedule:   schedule,
		logger:     logger.With("module", "retention_sweeper"),
	}, nil
}

func (s *Sweeper) Start(ctx context.Context) error {
	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add sweep cron job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Retention sweeper started", "schedule", s.schedule, "retention", s.retention)

	return nil
}

// Sweep deletes every conversation idle past the retention window. Load
// and delete failures are logged per conversation and do not stop the pass.
func (s *Sweeper) Sweep(ctx context.Context) {
	ids, err := s.repository.ListIDs(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list conversations for sweep", "error", err)

		return
	}

	cutoff := time.Now().UTC().Add(-s.retention)
	deleted := 0

	for _, id := range ids {
		conversation, err := s.repository.FetchByID(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to load conversation during sweep", "conversation_id", id, "error", err)

			continue
		}

		if conversation.UpdatedAt.After(cutoff) {
			continue
		}

		err = s.repository.Delete(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to delete expired conversation", "conversation_id", id, "error", err)

			continue
		}

		deleted++
	}

	if deleted > 0 {
		s.logger.InfoContext(ctx, "Retention sweep completed", "deleted", deleted)
	}
}

func (s *Sweeper) Stop(_ context.Context) error {
	if s.cron != nil {
		s.cron.Stop()
	}

	return nil
}
