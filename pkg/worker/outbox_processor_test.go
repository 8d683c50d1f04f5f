package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository/memory"
	"github.com/jwalitptl/clinic-ledger/pkg/logger"
	"github.com/jwalitptl/clinic-ledger/pkg/metrics"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, eventType string, id string, payload json.RawMessage) error {
	return m.Called(eventType, id, payload).Error(0)
}

func testConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{BatchSize: 10, PollInterval: time.Second, RetryAttempts: 2, RetryDelay: time.Millisecond, MaxFailures: 3}
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "json", Output: &bytes.Buffer{}})
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	event := &model.OutboxEvent{EventType: model.EventPaymentAdded, Payload: json.RawMessage(`{"payment_id":1}`)}
	require.NoError(t, store.Outbox.Create(ctx, event))

	pub := &mockPublisher{}
	pub.On("Publish", model.EventPaymentAdded, event.ID.String(), event.Payload).Return(nil).Once()

	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	proc, err := NewOutboxProcessor(store.Outbox, pub, testConfig(), testLogger(), m)
	require.NoError(t, err)

	n, err := proc.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	pub.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsProcessed))

	pending, err := store.Outbox.GetPendingEvents(ctx, 10, 3)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessBatchRetriesThenMarksFailed(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	event := &model.OutboxEvent{EventType: model.EventNoteCreated, Payload: json.RawMessage(`{}`)}
	require.NoError(t, store.Outbox.Create(ctx, event))

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	proc, err := NewOutboxProcessor(store.Outbox, pub, testConfig(), testLogger(), m)
	require.NoError(t, err)
	proc.sleep = func(time.Duration) {}

	n, err := proc.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	pub.AssertNumberOfCalls(t, "Publish", 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsFailed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxRetries.WithLabelValues(model.EventNoteCreated)))

	pending, err := store.Outbox.GetPendingEvents(ctx, 10, 3)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.OutboxStatusFailed, pending[0].Status)
	assert.Equal(t, 1, pending[0].RetryCount)
	require.NotNil(t, pending[0].ErrorMessage)
	assert.Equal(t, "redis down", *pending[0].ErrorMessage)
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = 0
	_, err := NewOutboxProcessor(memory.NewStore().Outbox, &mockPublisher{}, cfg, testLogger(), nil)
	assert.Error(t, err)
}

func TestCleanupDeletesOldProcessedEvents(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	event := &model.OutboxEvent{EventType: model.EventPaymentDeleted, Payload: json.RawMessage(`{}`)}
	require.NoError(t, store.Outbox.Create(ctx, event))
	require.NoError(t, store.Outbox.MarkProcessed(ctx, event.ID))

	w := NewOutboxCleanupWorker(store.Outbox, -time.Minute, time.Hour, testLogger())
	deleted, err := w.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
