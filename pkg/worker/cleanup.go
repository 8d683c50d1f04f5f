package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/clinic-ledger/internal/repository"
	"github.com/jwalitptl/clinic-ledger/pkg/logger"
)

// OutboxCleanupWorker deletes published events older than the retention.
type OutboxCleanupWorker struct {
	repo      repository.OutboxRepository
	retention time.Duration
	interval  time.Duration
	logger    *logger.Logger
}

func NewOutboxCleanupWorker(repo repository.OutboxRepository, retention, interval time.Duration, logger *logger.Logger) *OutboxCleanupWorker {
	return &OutboxCleanupWorker{
		repo:      repo,
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Cleanup(ctx); err != nil {
				w.logger.Error(err, "Failed to clean up outbox events")
			}
		}
	}
}

func (w *OutboxCleanupWorker) Cleanup(ctx context.Context) (int64, error) {
	deleted, err := w.repo.DeleteProcessedBefore(ctx, time.Now().Add(-w.retention))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		w.logger.Info("Deleted processed outbox events", "count", deleted)
	}
	return deleted, nil
}
