package messaging

import (
	"context"
	"encoding/json"
	"time"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Publisher sends typed events to a fixed destination.
type Publisher interface {
	Publish(ctx context.Context, eventType string, id string, payload json.RawMessage) error
}

// Message is the envelope every ledger event is published in.
type Message struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}
