package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
	"github.com/jwalitptl/clinic-ledger/pkg/logger"
	"github.com/jwalitptl/clinic-ledger/pkg/messaging"
	"github.com/jwalitptl/clinic-ledger/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	// MaxFailures is how many failed polls an event survives before it is
	// left in FAILED for good.
	MaxFailures int
}

// Validate rejects non-positive settings.
func (c OutboxProcessorConfig) Validate() error {
	switch {
	case c.BatchSize <= 0:
		return fmt.Errorf("BatchSize must be greater than 0")
	case c.PollInterval <= 0:
		return fmt.Errorf("PollInterval must be greater than 0")
	case c.RetryAttempts <= 0:
		return fmt.Errorf("RetryAttempts must be greater than 0")
	case c.RetryDelay < 0:
		return fmt.Errorf("RetryDelay must not be negative")
	case c.MaxFailures <= 0:
		return fmt.Errorf("MaxFailures must be greater than 0")
	}
	return nil
}

// OutboxProcessor publishes pending ledger events and records the outcome
// on each outbox row.
type OutboxProcessor struct {
	repo      repository.OutboxRepository
	publisher messaging.Publisher
	config    OutboxProcessorConfig
	logger    *logger.Logger
	metrics   *metrics.Metrics
	sleep     func(time.Duration)
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	publisher messaging.Publisher,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) (*OutboxProcessor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &OutboxProcessor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   metrics,
		sleep:     time.Sleep,
	}, nil
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down outbox processor")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error(err, "Failed to process events")
			}
		}
	}
}

// ProcessBatch publishes one batch of pending events and returns how many
// were published.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingEvents(ctx, p.config.BatchSize, p.config.MaxFailures)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.OutboxQueueSize.Set(float64(len(events)))

	published := 0
	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Error(err, "Failed to process event",
				"event_id", event.ID.String(),
				"event_type", event.EventType)
			continue
		}
		published++
	}
	return published, nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	attempt := 0
	err := p.retry(func() error {
		if attempt > 0 {
			p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
		}
		attempt++
		return p.publisher.Publish(ctx, event.EventType, event.ID.String(), event.Payload)
	})

	if err != nil {
		p.metrics.OutboxEventsFailed.Inc()
		if updateErr := p.repo.MarkFailed(ctx, event.ID, err.Error()); updateErr != nil {
			p.logger.Error(updateErr, "Failed to update event status", "event_id", event.ID.String())
		}
		return err
	}

	p.metrics.OutboxEventsProcessed.Inc()
	if err := p.repo.MarkProcessed(ctx, event.ID); err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

func (p *OutboxProcessor) retry(fn func() error) error {
	var err error
	for i := 0; i < p.config.RetryAttempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < p.config.RetryAttempts-1 {
			p.sleep(p.config.RetryDelay)
		}
	}
	return err
}
