package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/narwhalmedia/classifieds/internal/infrastructure/events"
	"github.com/narwhalmedia/classifieds/pkg/config"
)

// Publisher sends event envelopes to one Kafka topic, keyed by aggregate id
// so the events of one post or user stay ordered within a partition.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

var _ events.Sink = (*Publisher)(nil)

// ProducerConfig returns the sarama settings used for event delivery.
func ProducerConfig(settings config.KafkaSettings) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = settings.ClientID
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	return cfg
}

// NewPublisher connects a sync producer to the configured brokers.
func NewPublisher(settings config.KafkaSettings) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(settings.Brokers, ProducerConfig(settings))
	if err != nil {
		return nil, fmt.Errorf("creating producer: %w", err)
	}
	return NewPublisherWithProducer(producer, settings.Topic), nil
}

// NewPublisherWithProducer wraps an existing producer.
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
	}
}

// Name implements events.Sink.
func (p *Publisher) Name() string { return "kafka" }

// Send implements events.Sink. sarama's sync producer has no context
// support; ctx is only checked before sending.
func (p *Publisher) Send(ctx context.Context, env *events.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling envelope: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(env.AggregateType + ":" + env.AggregateID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(env.ID)},
			{Key: []byte("event_type"), Value: []byte(env.EventType)},
			{Key: []byte("aggregate_type"), Value: []byte(env.AggregateType)},
		},
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

// Close closes the producer
func (p *Publisher) Close() error {
	return p.producer.Close()
}
