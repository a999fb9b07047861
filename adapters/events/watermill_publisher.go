package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/webx403/webx403-go/core"
	"github.com/webx403/webx403-go/ports"
)

// DefaultTopic is the topic authentication decisions are published on.
const DefaultTopic = "webx403.auth"

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a publisher emitting on DefaultTopic.
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return NewWatermillPublisherOnTopic(publisher, DefaultTopic)
}

// NewWatermillPublisherOnTopic creates a publisher emitting on topic.
func NewWatermillPublisherOnTopic(publisher message.Publisher, topic string) *WatermillPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     topic,
	}
}

// PublishAuthEvent publishes one authentication decision as a JSON message.
func (p *WatermillPublisher) PublishAuthEvent(ctx context.Context, event core.AuthEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)
