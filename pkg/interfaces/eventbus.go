package interfaces

import (
	"context"
)

// Event is a domain fact published after a moderation step commits.
type Event interface {
	// EventType is the dotted name, e.g. "post.approved". The part before
	// the first dot names the aggregate.
	EventType() string

	// Timestamp is the occurrence time in Unix nanoseconds.
	Timestamp() int64

	// AggregateID is the id of the post, user, report or category.
	AggregateID() string
}

// EventHandler receives events of the types it was subscribed to.
type EventHandler interface {
	Handle(ctx context.Context, event Event) error

	// EventType names the handler in logs.
	EventType() string
}

// EventBus fans events out to in-process handlers. Handler errors are
// logged, never returned to the publisher.
type EventBus interface {
	// Publish delivers synchronously. It fails only when the bus is stopped.
	Publish(ctx context.Context, event Event) error

	// PublishAsync delivers on another goroutine. Services call it after
	// commit so a slow handler never holds a moderation request.
	PublishAsync(ctx context.Context, event Event)

	Subscribe(eventType string, handler EventHandler) error
	Unsubscribe(eventType string, handler EventHandler) error

	Start(ctx context.Context) error

	// Stop drains pending async deliveries and refuses later events.
	Stop() error
}
