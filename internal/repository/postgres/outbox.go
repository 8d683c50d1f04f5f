package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
)

type outboxRepository struct {
	BaseRepository
}

func NewOutboxRepository(base BaseRepository) repository.OutboxRepository {
	return &outboxRepository{base}
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}

	query := `
		INSERT INTO outbox_events (
			id, event_type, payload, status, retry_count, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, 0, $5, $6
		)
	`
	now := time.Now().UTC()
	event.ID = uuid.New()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.Status = model.OutboxStatusPending

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		[]byte(event.Payload),
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// GetPendingEvents returns pending events plus failed ones that still have
// retries left, oldest first.
func (r *outboxRepository) GetPendingEvents(ctx context.Context, limit int, maxRetries int) ([]*model.OutboxEvent, error) {
	query := `
		SELECT id, event_type, payload, status, error_message, retry_count,
			created_at, processed_at, updated_at
		FROM outbox_events
		WHERE status = $1 OR (status = $2 AND retry_count < $3)
		ORDER BY created_at ASC
		LIMIT $4
	`
	events := []*model.OutboxEvent{}
	err := r.db.SelectContext(ctx, &events, query,
		model.OutboxStatusPending, model.OutboxStatusFailed, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE outbox_events
		SET status = $1, error_message = NULL, processed_at = NOW(), updated_at = NOW()
		WHERE id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, model.OutboxStatusProcessed, id); err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE outbox_events
		SET status = $1, error_message = $2, retry_count = retry_count + 1, updated_at = NOW()
		WHERE id = $3
	`
	if _, err := r.db.ExecContext(ctx, query, model.OutboxStatusFailed, errorMessage, id); err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	return nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE status = $1
		AND processed_at < $2
	`
	result, err := r.db.ExecContext(ctx, query, model.OutboxStatusProcessed, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}

	return result.RowsAffected()
}
