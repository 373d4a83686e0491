package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/narwhalmedia/classifieds/pkg/errors"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
)

// ErrBusStopped is returned by Publish once Stop has been called.
var ErrBusStopped = errors.Internal("event bus is stopped")

// InMemoryEventBus delivers events to in-process handlers. Moderation
// services publish after commit with PublishAsync; Stop waits for those
// deliveries and refuses anything published later.
type InMemoryEventBus struct {
	handlers map[string][]interfaces.EventHandler
	mu       sync.RWMutex
	stopped  bool
	logger   interfaces.Logger
	wg       sync.WaitGroup
}

var _ interfaces.EventBus = (*InMemoryEventBus)(nil)

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger interfaces.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		handlers: make(map[string][]interfaces.EventHandler),
		logger:   logger,
	}
}

// Publish delivers event to every handler of its type before returning.
// A failing handler is logged and does not stop the others.
func (eb *InMemoryEventBus) Publish(ctx context.Context, event interfaces.Event) error {
	handlers, ok := eb.snapshot(event)
	if !ok {
		eb.dropped(ctx, event)
		return ErrBusStopped
	}
	eb.deliver(ctx, event, handlers)
	return nil
}

// PublishAsync delivers event on its own goroutine. Events published after
// Stop are logged and dropped.
func (eb *InMemoryEventBus) PublishAsync(ctx context.Context, event interfaces.Event) {
	eb.mu.RLock()
	if eb.stopped {
		eb.mu.RUnlock()
		eb.dropped(ctx, event)
		return
	}
	handlers := eb.copyHandlers(event.EventType())
	// Add under the read lock so Stop cannot start waiting in between.
	eb.wg.Add(1)
	eb.mu.RUnlock()

	go func() {
		defer eb.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				eb.logger.WithContext(ctx).Error("Event handler panicked",
					interfaces.String("event_type", event.EventType()),
					interfaces.Error(fmt.Errorf("%v", r)))
			}
		}()
		eb.deliver(ctx, event, handlers)
	}()
}

func (eb *InMemoryEventBus) snapshot(event interfaces.Event) ([]interfaces.EventHandler, bool) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if eb.stopped {
		return nil, false
	}
	return eb.copyHandlers(event.EventType()), true
}

// copyHandlers must be called with mu held.
func (eb *InMemoryEventBus) copyHandlers(eventType string) []interfaces.EventHandler {
	return append([]interfaces.EventHandler(nil), eb.handlers[eventType]...)
}

func (eb *InMemoryEventBus) deliver(ctx context.Context, event interfaces.Event, handlers []interfaces.EventHandler) {
	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			eb.logger.WithContext(ctx).Error("Event handler failed",
				interfaces.String("event_type", event.EventType()),
				interfaces.String("aggregate_id", event.AggregateID()),
				interfaces.String("handler", handler.EventType()),
				interfaces.Error(err))
		}
	}
}

func (eb *InMemoryEventBus) dropped(ctx context.Context, event interfaces.Event) {
	eb.logger.WithContext(ctx).Warn("Event dropped after shutdown",
		interfaces.String("event_type", event.EventType()),
		interfaces.String("aggregate_id", event.AggregateID()))
}

// Subscribe registers a handler for a specific event type
func (eb *InMemoryEventBus) Subscribe(eventType string, handler interfaces.EventHandler) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debug("Event handler subscribed",
		interfaces.String("event_type", eventType),
		interfaces.String("handler", handler.EventType()))

	return nil
}

// Unsubscribe removes a handler for a specific event type
func (eb *InMemoryEventBus) Unsubscribe(eventType string, handler interfaces.EventHandler) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	handlers := eb.handlers[eventType]
	for i, h := range handlers {
		if h == handler {
			eb.handlers[eventType] = append(handlers[:i:i], handlers[i+1:]...)
			break
		}
	}

	return nil
}

// Start reports the subscriptions in place. It fails on a stopped bus.
func (eb *InMemoryEventBus) Start(ctx context.Context) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.stopped {
		return ErrBusStopped
	}
	count := 0
	for _, hs := range eb.handlers {
		count += len(hs)
	}
	eb.logger.WithContext(ctx).Info("Event bus started",
		interfaces.Int("event_types", len(eb.handlers)),
		interfaces.Int("handlers", count))
	return nil
}

// Stop refuses new events and waits for in-flight async deliveries. It is
// safe to call more than once.
func (eb *InMemoryEventBus) Stop() error {
	eb.mu.Lock()
	already := eb.stopped
	eb.stopped = true
	eb.mu.Unlock()

	eb.wg.Wait()
	if !already {
		eb.logger.Info("Event bus stopped")
	}
	return nil
}
