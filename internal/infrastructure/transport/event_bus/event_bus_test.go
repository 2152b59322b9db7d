package events

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubscriber struct {
	mu     sync.Mutex
	events []Event
	err    error
	panic  bool
}

func (r *recordingSubscriber) HandleEvent(e Event) error {
	if r.panic {
		panic("boom")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingSubscriber) GetName() string { return "recorder" }

func (r *recordingSubscriber) GetSubscribedEvents() []EventType {
	return []EventType{EventScanCompleted, EventScanFailed}
}

func (r *recordingSubscriber) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestPublish_RequiresRunningBus(t *testing.T) {
	bus := NewEventBus()
	err := bus.Publish(Event{Type: EventScanCompleted, Source: "test"})
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestStop_DrainsBufferedEvents(t *testing.T) {
	bus := NewEventBus(EventBusConfig{BufferSize: 50, WorkerCount: 1})
	sub := &recordingSubscriber{}
	bus.SubscribeAll(sub)
	bus.Start()

	for i := 0; i < 20; i++ {
		require.NoError(t, bus.Publish(Event{Type: EventScanCompleted, Source: "test"}))
	}
	bus.Stop()

	assert.Equal(t, 20, sub.count())
	assert.False(t, bus.IsRunning())
	assert.ErrorIs(t, bus.Publish(Event{Type: EventScanCompleted, Source: "test"}), ErrNotRunning)
}

func TestPublishSync_FillsIDAndTimestamp(t *testing.T) {
	bus := NewEventBus()
	sub := &recordingSubscriber{}
	bus.Subscribe(EventScanFailed, sub)

	require.NoError(t, bus.PublishSync(Event{Type: EventScanFailed, Source: "test"}))

	require.Equal(t, 1, sub.count())
	assert.NotEmpty(t, sub.events[0].ID)
	assert.False(t, sub.events[0].Timestamp.IsZero())
}

func TestSubscribe_IgnoresUndeclaredEventType(t *testing.T) {
	bus := NewEventBus()
	bus.Subscribe(EventScanStarted, &recordingSubscriber{})
	assert.Equal(t, 0, bus.GetSubscriberCount(EventScanStarted))
}

func TestUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	sub := &recordingSubscriber{}
	bus.SubscribeAll(sub)
	bus.Unsubscribe(EventScanFailed, sub)

	assert.Equal(t, []EventType{EventScanCompleted}, bus.GetEventTypes())
}

func TestProcessEvent_FailingSubscriberDoesNotBlockOthers(t *testing.T) {
	bus := NewEventBus()
	failing := &recordingSubscriber{err: errors.New("sink down")}
	panicking := &recordingSubscriber{panic: true}
	healthy := &recordingSubscriber{}
	bus.SubscribeAll(failing)
	bus.SubscribeAll(panicking)
	bus.SubscribeAll(healthy)

	err := bus.PublishSync(Event{Type: EventScanCompleted, Source: "test"})

	assert.Error(t, err)
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, int64(2), bus.GetMetrics().EventsFailed)
}

func TestValidationMiddleware(t *testing.T) {
	bus := NewEventBus()
	bus.AddMiddleware(&ValidationMiddleware{})
	sub := &recordingSubscriber{}
	bus.SubscribeAll(sub)

	assert.ErrorIs(t, bus.PublishSync(Event{Type: EventScanCompleted}), ErrInvalidEvent)
	assert.Equal(t, 0, sub.count())
}

func TestValidationMiddleware_AllowedTypes(t *testing.T) {
	bus := NewEventBus()
	bus.AddMiddleware(&ValidationMiddleware{Allowed: []EventType{EventScanCompleted}})
	sub := &recordingSubscriber{}
	bus.SubscribeAll(sub)

	assert.ErrorIs(t, bus.PublishSync(Event{Type: "price.updated", Source: "test"}), ErrInvalidEvent)
	assert.NoError(t, bus.PublishSync(Event{Type: EventScanCompleted, Source: "test"}))
	assert.Equal(t, 1, sub.count())
}

func TestMiddlewareFunc_WrapsChain(t *testing.T) {
	bus := NewEventBus()
	var order []string
	bus.AddMiddleware(MiddlewareFunc(func(e Event, next HandlerFunc) error {
		order = append(order, "before")
		err := next(e)
		order = append(order, "after")
		return err
	}))
	bus.SubscribeAll(NewFuncSubscriber("mark", []EventType{EventScanStarted}, func(Event) error {
		order = append(order, "handler")
		return nil
	}))

	require.NoError(t, bus.PublishSync(Event{Type: EventScanStarted, Source: "test"}))
	assert.Equal(t, []string{"before", "handler", "after"}, order)
}

func TestPublish_BufferFull(t *testing.T) {
	bus := NewEventBus(EventBusConfig{BufferSize: 1, WorkerCount: 1})

	var handled int32
	block := make(chan struct{})
	bus.SubscribeAll(NewFuncSubscriber("slow", []EventType{EventScanCompleted}, func(Event) error {
		<-block
		atomic.AddInt32(&handled, 1)
		return nil
	}))
	bus.Start()

	var full bool
	for i := 0; i < 10 && !full; i++ {
		full = errors.Is(bus.Publish(Event{Type: EventScanCompleted, Source: "test"}), ErrBufferFull)
		time.Sleep(time.Millisecond)
	}
	close(block)
	bus.Stop()

	assert.True(t, full)
	assert.Positive(t, bus.GetMetrics().EventsDropped)
}

func TestPayloadSubscriber_RejectsForeignPayload(t *testing.T) {
	var got []string
	sub := NewPayloadSubscriber("strings", []EventType{EventScanStarted}, func(_ Event, s string) error {
		got = append(got, s)
		return nil
	})

	require.NoError(t, sub.HandleEvent(Event{Type: EventScanStarted, Data: "ok"}))
	err := sub.HandleEvent(Event{Type: EventScanStarted, Data: 42})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected payload int")
	assert.Equal(t, []string{"ok"}, got)
	assert.Equal(t, "strings", sub.GetName())
}
