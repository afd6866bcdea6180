package domain

import (
	"context"
)

// EventBus is the in-process publish/subscribe channel between the scoring
// pipeline and side-effect consumers such as the alert log.
type EventBus interface {
	// Publish sends a message to a topic. Delivery is best-effort and
	// non-blocking; slow subscribers miss messages rather than stall
	// the pipeline.
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe registers a handler for a topic.
	Subscribe(ctx context.Context, topic string, handler MessageHandler) (Subscription, error)

	// Lifecycle
	Close() error
}

// MessageHandler processes incoming messages.
type MessageHandler func(ctx context.Context, msg *Message) error

// Message represents an event message.
type Message struct {
	ID        string `json:"id"`
	Topic     string `json:"topic"`
	Payload   []byte `json:"payload"`
	Timestamp int64  `json:"timestamp"`
}

// Subscription represents an active subscription.
type Subscription interface {
	// Unsubscribe stops receiving messages.
	Unsubscribe() error

	// Topic returns the subscribed topic.
	Topic() string
}

// Standard topic names for the scoring pipeline.
const (
	TopicResultScored = "kestrel.result.scored"
	TopicAlert        = "kestrel.alert"
)
