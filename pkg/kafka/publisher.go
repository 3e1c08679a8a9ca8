package kafka

import (
	"context"
)

// EventPublisher emits domain events. Implementations must be safe for concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, key, eventType string, payload any) error
	Close() error
}

// ProducerPublisher encodes events as JSON messages on one topic.
type ProducerPublisher struct {
	producer *Producer
	source   string
}

func NewProducerPublisher(producer *Producer, source string) *ProducerPublisher {
	return &ProducerPublisher{producer: producer, source: source}
}

func (p *ProducerPublisher) Publish(ctx context.Context, key, eventType string, payload any) error {
	msg, err := NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(p.source).
		WithCorrelationID(CorrelationIDFromContext(ctx)).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *ProducerPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops every event; used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }

type correlationKey struct{}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
