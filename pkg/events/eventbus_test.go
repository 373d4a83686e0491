package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/narwhalmedia/classifieds/pkg/events"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
	"github.com/narwhalmedia/classifieds/pkg/logger"
)

type testEvent struct {
	kind string
	id   string
}

func (e testEvent) EventType() string   { return e.kind }
func (e testEvent) Timestamp() int64    { return time.Now().UnixNano() }
func (e testEvent) AggregateID() string { return e.id }

type recordingHandler struct {
	kind string
	err  error

	mu   sync.Mutex
	seen []string
}

func (h *recordingHandler) EventType() string { return h.kind }

func (h *recordingHandler) Handle(ctx context.Context, event interfaces.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, event.AggregateID())
	return h.err
}

func (h *recordingHandler) ids() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func TestPublishReachesOnlyMatchingHandlers(t *testing.T) {
	bus := events.NewInMemoryEventBus(logger.NewNoop())
	approved := &recordingHandler{kind: "post.approved"}
	rejected := &recordingHandler{kind: "post.rejected"}
	require.NoError(t, bus.Subscribe("post.approved", approved))
	require.NoError(t, bus.Subscribe("post.rejected", rejected))

	require.NoError(t, bus.Publish(context.Background(), testEvent{kind: "post.approved", id: "7"}))

	assert.Equal(t, []string{"7"}, approved.ids())
	assert.Empty(t, rejected.ids())
}

func TestHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := events.NewInMemoryEventBus(logger.NewNoop())
	failing := &recordingHandler{kind: "user.banned", err: errors.New("boom")}
	healthy := &recordingHandler{kind: "user.banned"}
	require.NoError(t, bus.Subscribe("user.banned", failing))
	require.NoError(t, bus.Subscribe("user.banned", healthy))

	err := bus.Publish(context.Background(), testEvent{kind: "user.banned", id: "3"})

	assert.NoError(t, err)
	assert.Equal(t, []string{"3"}, failing.ids())
	assert.Equal(t, []string{"3"}, healthy.ids())
}

func TestUnsubscribe(t *testing.T) {
	bus := events.NewInMemoryEventBus(logger.NewNoop())
	h := &recordingHandler{kind: "category.changed"}
	require.NoError(t, bus.Subscribe("category.changed", h))
	require.NoError(t, bus.Unsubscribe("category.changed", h))

	require.NoError(t, bus.Publish(context.Background(), testEvent{kind: "category.changed", id: "1"}))

	assert.Empty(t, h.ids())
}

func TestStopWaitsForAsyncPublishes(t *testing.T) {
	bus := events.NewInMemoryEventBus(logger.NewNoop())
	h := &recordingHandler{kind: "post.submitted"}
	require.NoError(t, bus.Subscribe("post.submitted", h))
	require.NoError(t, bus.Start(context.Background()))

	for i := 0; i < 10; i++ {
		bus.PublishAsync(context.Background(), testEvent{kind: "post.submitted", id: "p"})
	}
	require.NoError(t, bus.Stop())

	assert.Len(t, h.ids(), 10)
}

func TestPublishAfterStopIsRefused(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	bus := events.NewInMemoryEventBus(logger.NewFromZap(zap.New(core)))
	h := &recordingHandler{kind: "report.filed"}
	require.NoError(t, bus.Subscribe("report.filed", h))
	require.NoError(t, bus.Stop())

	err := bus.Publish(context.Background(), testEvent{kind: "report.filed", id: "1"})
	bus.PublishAsync(context.Background(), testEvent{kind: "report.filed", id: "2"})

	assert.ErrorIs(t, err, events.ErrBusStopped)
	assert.Empty(t, h.ids())
	dropped := logs.FilterMessage("Event dropped after shutdown").All()
	require.Len(t, dropped, 2)
	assert.Equal(t, "report.filed", dropped[0].ContextMap()["event_type"])
	assert.Error(t, bus.Start(context.Background()))
	assert.NoError(t, bus.Stop(), "a second stop is harmless")
}

func TestStartReportsSubscriptions(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	bus := events.NewInMemoryEventBus(logger.NewFromZap(zap.New(core)))
	require.NoError(t, bus.Subscribe("post.approved", &recordingHandler{kind: "a"}))
	require.NoError(t, bus.Subscribe("post.approved", &recordingHandler{kind: "b"}))

	require.NoError(t, bus.Start(context.Background()))

	started := logs.FilterMessage("Event bus started").All()
	require.Len(t, started, 1)
	assert.EqualValues(t, 2, started[0].ContextMap()["handlers"])
	assert.EqualValues(t, 1, started[0].ContextMap()["event_types"])
	require.NoError(t, bus.Stop())
}
