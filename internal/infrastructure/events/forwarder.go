package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/narwhalmedia/classifieds/pkg/interfaces"
)

// Envelope wraps a domain event with metadata for transport.
type Envelope struct {
	ID            string          `json:"id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Data          json.RawMessage `json:"data"`
}

// identified is implemented by events that carry their own id.
type identified interface {
	EventID() string
}

// NewEnvelope serializes event. The aggregate type is the event type up to
// its first dot, so "post.approved" belongs to "post".
func NewEnvelope(event interfaces.Event) (*Envelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	id := ""
	if e, ok := event.(identified); ok {
		id = e.EventID()
	}
	if id == "" {
		id = uuid.NewString()
	}

	aggregate, _, _ := strings.Cut(event.EventType(), ".")
	return &Envelope{
		ID:            id,
		EventType:     event.EventType(),
		AggregateType: aggregate,
		AggregateID:   event.AggregateID(),
		OccurredAt:    time.Unix(0, event.Timestamp()).UTC(),
		Data:          data,
	}, nil
}

// Subject returns "<prefix>.<aggregate>.<event>" for the envelope.
func (e *Envelope) Subject(prefix string) string {
	if prefix == "" {
		return e.EventType
	}
	return prefix + "." + e.EventType
}

// Sink delivers envelopes to an external broker.
type Sink interface {
	Send(ctx context.Context, env *Envelope) error
	Name() string
}

// Forwarder subscribes to the in-process bus and hands every event to a
// Sink. Delivery is best effort: failures are logged and never reach the
// code that published the event.
type Forwarder struct {
	sink    Sink
	timeout time.Duration
	logger  interfaces.Logger
}

// NewForwarder creates a forwarder. A zero timeout means no deadline
// beyond the caller's context.
func NewForwarder(sink Sink, timeout time.Duration, logger interfaces.Logger) *Forwarder {
	return &Forwarder{
		sink:    sink,
		timeout: timeout,
		logger:  logger,
	}
}

// Register subscribes the forwarder to each event type.
func (f *Forwarder) Register(bus interfaces.EventBus, eventTypes ...string) error {
	for _, eventType := range eventTypes {
		if err := bus.Subscribe(eventType, &subscription{eventType: eventType, forwarder: f}); err != nil {
			return fmt.Errorf("subscribe %s forwarder to %s: %w", f.sink.Name(), eventType, err)
		}
	}
	f.logger.Info("Event forwarder registered",
		interfaces.String("sink", f.sink.Name()),
		interfaces.Int("event_types", len(eventTypes)))
	return nil
}

// Forward sends one event.
func (f *Forwarder) Forward(ctx context.Context, event interfaces.Event) error {
	env, err := NewEnvelope(event)
	if err != nil {
		f.logger.Error("Failed to encode event",
			interfaces.String("event_type", event.EventType()),
			interfaces.Error(err))
		return err
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	if err := f.sink.Send(ctx, env); err != nil {
		f.logger.Error("Failed to forward event",
			interfaces.String("sink", f.sink.Name()),
			interfaces.String("event_id", env.ID),
			interfaces.String("event_type", env.EventType),
			interfaces.Error(err))
		return err
	}

	f.logger.Debug("Event forwarded",
		interfaces.String("sink", f.sink.Name()),
		interfaces.String("event_id", env.ID),
		interfaces.String("event_type", env.EventType))
	return nil
}

type subscription struct {
	eventType string
	forwarder *Forwarder
}

func (s *subscription) Handle(ctx context.Context, event interfaces.Event) error {
	return s.forwarder.Forward(ctx, event)
}

func (s *subscription) EventType() string { return s.eventType }
