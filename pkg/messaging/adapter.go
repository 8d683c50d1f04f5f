package messaging

import (
	"context"
	"encoding/json"
	"time"
)

// ChannelPublisher wraps events in a Message and publishes them to one
// broker channel.
type ChannelPublisher struct {
	broker  Broker
	channel string
	now     func() time.Time
}

func NewChannelPublisher(broker Broker, channel string) *ChannelPublisher {
	return &ChannelPublisher{broker: broker, channel: channel, now: time.Now}
}

func (p *ChannelPublisher) Publish(ctx context.Context, eventType string, id string, payload json.RawMessage) error {
	return p.broker.Publish(ctx, p.channel, Message{
		ID:         id,
		Type:       eventType,
		Payload:    payload,
		OccurredAt: p.now().UTC(),
	})
}

func (p *ChannelPublisher) Close() error {
	return p.broker.Close()
}
