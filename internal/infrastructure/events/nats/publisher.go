package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/narwhalmedia/classifieds/internal/infrastructure/events"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
)

// StreamPublisher is the part of jetstream.JetStream the publisher needs.
type StreamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher sends event envelopes to JetStream subjects
// "<prefix>.<aggregate>.<event>".
type Publisher struct {
	js     StreamPublisher
	prefix string
	logger interfaces.Logger
}

var _ events.Sink = (*Publisher)(nil)

// NewPublisher creates a JetStream publisher.
func NewPublisher(js StreamPublisher, subjectPrefix string, logger interfaces.Logger) *Publisher {
	return &Publisher{
		js:     js,
		prefix: subjectPrefix,
		logger: logger,
	}
}

// Name implements events.Sink.
func (p *Publisher) Name() string { return "nats" }

// Send implements events.Sink. The envelope id is the JetStream message
// id, so a redelivered event is dropped by the stream.
func (p *Publisher) Send(ctx context.Context, env *events.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	subject := env.Subject(p.prefix)
	ack, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(env.ID))
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	p.logger.Debug("Event published",
		interfaces.String("event_id", env.ID),
		interfaces.String("subject", subject),
		interfaces.Any("sequence", ack.Sequence),
		interfaces.Bool("duplicate", ack.Duplicate))
	return nil
}
