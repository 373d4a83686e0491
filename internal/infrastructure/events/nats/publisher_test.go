package nats_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/classifieds/internal/infrastructure/events"
	"github.com/narwhalmedia/classifieds/internal/infrastructure/events/nats"
	listingdomain "github.com/narwhalmedia/classifieds/internal/listing/domain"
	"github.com/narwhalmedia/classifieds/pkg/config"
	pkgevents "github.com/narwhalmedia/classifieds/pkg/events"
	"github.com/narwhalmedia/classifieds/pkg/logger"
)

type published struct {
	subject string
	data    []byte
	opts    int
}

// fakeJetStream records publishes instead of talking to a server.
type fakeJetStream struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakeJetStream) Publish(_ context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, data: payload, opts: len(opts)})
	return &jetstream.PubAck{Stream: "CLASSIFIEDS", Sequence: uint64(len(f.msgs))}, nil
}

func (f *fakeJetStream) sent() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.msgs...)
}

func approvedEvent() *listingdomain.PostModeratedEvent {
	return &listingdomain.PostModeratedEvent{
		ID:         "8d3c0f53-7f4e-4a53-a2a8-5a4b9a0e1c11",
		Type:       listingdomain.EventPostApproved,
		PostID:     42,
		OwnerID:    7,
		CategoryID: 3,
		AdminID:    1,
		From:       "pending",
		To:         "approved",
		OccurredAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPublisher_Send(t *testing.T) {
	js := &fakeJetStream{}
	publisher := nats.NewPublisher(js, "classifieds", logger.NewNoop())

	env, err := events.NewEnvelope(approvedEvent())
	require.NoError(t, err)
	require.NoError(t, publisher.Send(context.Background(), env))

	msgs := js.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, "classifieds.post.approved", msgs[0].subject)
	assert.Equal(t, 1, msgs[0].opts)

	var decoded events.Envelope
	require.NoError(t, json.Unmarshal(msgs[0].data, &decoded))
	assert.Equal(t, "8d3c0f53-7f4e-4a53-a2a8-5a4b9a0e1c11", decoded.ID)
	assert.Equal(t, "post", decoded.AggregateType)
	assert.Equal(t, "42", decoded.AggregateID)
	assert.Equal(t, listingdomain.EventPostApproved, decoded.EventType)
	assert.JSONEq(t, `"approved"`, string(mustField(t, decoded.Data, "to")))
}

func TestPublisher_SendError(t *testing.T) {
	js := &fakeJetStream{err: errors.New("nats: no responders available for request")}
	publisher := nats.NewPublisher(js, "classifieds", logger.NewNoop())

	env, err := events.NewEnvelope(approvedEvent())
	require.NoError(t, err)

	err = publisher.Send(context.Background(), env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no responders")
}

func TestForwarder_FromEventBus(t *testing.T) {
	js := &fakeJetStream{}
	bus := pkgevents.NewInMemoryEventBus(logger.NewNoop())
	forwarder := events.NewForwarder(nats.NewPublisher(js, "classifieds", logger.NewNoop()), time.Second, logger.NewNoop())
	require.NoError(t, forwarder.Register(bus, listingdomain.AllPostEvents...))

	bus.PublishAsync(context.Background(), approvedEvent())
	require.NoError(t, bus.Stop())

	msgs := js.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, "classifieds.post.approved", msgs[0].subject)
}

func TestForwarder_FailureDoesNotReachPublisher(t *testing.T) {
	js := &fakeJetStream{err: errors.New("stream not found")}
	bus := pkgevents.NewInMemoryEventBus(logger.NewNoop())
	forwarder := events.NewForwarder(nats.NewPublisher(js, "classifieds", logger.NewNoop()), 0, logger.NewNoop())
	require.NoError(t, forwarder.Register(bus, listingdomain.EventPostApproved))

	assert.NoError(t, bus.Publish(context.Background(), approvedEvent()))
	assert.Error(t, forwarder.Forward(context.Background(), approvedEvent()))
}

func TestStreamConfig(t *testing.T) {
	cfg := nats.StreamConfig(config.GetDefaultPortalConfig().Events.NATS)

	assert.Equal(t, "CLASSIFIEDS", cfg.Name)
	assert.Equal(t, []string{"classifieds.>"}, cfg.Subjects)
}

func mustField(t *testing.T, data json.RawMessage, name string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	return fields[name]
}
