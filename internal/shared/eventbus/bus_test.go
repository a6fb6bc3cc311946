package eventbus

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"mongo-tracing/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietBus(cfg BusConfig) *EventBus {
	return NewEventBusWithConfig(logger.NewLoggerWithConfig("error", "json", io.Discard), cfg)
}

func TestEventBus_SubscribePublish(t *testing.T) {
	bus := quietBus(DefaultBusConfig())
	var got Event
	bus.Subscribe(EventTypeOrderChanged, func(ctx context.Context, event Event) error {
		got = event
		return nil
	})

	err := bus.Publish(context.Background(), NewEvent(EventTypeOrderChanged, "payload", "test"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, EventTypeOrderChanged, got.Type())
	assert.Equal(t, "payload", got.Data())
	assert.Equal(t, "test", got.Source())
	assert.False(t, got.Timestamp().IsZero())
}

func TestEventBus_PublishWithoutHandlers(t *testing.T) {
	bus := NewEventBus(nil)
	assert.NoError(t, bus.Publish(context.Background(), NewEvent("nobody", nil, "test")))
}

func TestEventBus_AsyncPublish(t *testing.T) {
	bus := quietBus(BusConfig{AsyncProcessing: true})
	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("async", func(ctx context.Context, event Event) error {
			calls.Add(1)
			return nil
		})
	}

	require.NoError(t, bus.Publish(context.Background(), NewEvent("async", nil, "test")))
	assert.EqualValues(t, 3, calls.Load())
}

func TestEventBus_UnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	bus := quietBus(DefaultBusConfig())
	var first, second int
	unsubFirst := bus.Subscribe("ev", func(ctx context.Context, event Event) error { first++; return nil })
	bus.Subscribe("ev", func(ctx context.Context, event Event) error { second++; return nil })
	assert.Equal(t, 2, bus.SubscriberCount("ev"))

	unsubFirst()
	unsubFirst()
	assert.Equal(t, 1, bus.SubscriberCount("ev"))

	require.NoError(t, bus.Publish(context.Background(), NewEvent("ev", nil, "test")))
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestEventBus_EventTypesSorted(t *testing.T) {
	bus := quietBus(DefaultBusConfig())
	noop := func(ctx context.Context, event Event) error { return nil }
	bus.Subscribe("b", noop)
	unsub := bus.Subscribe("a", noop)
	bus.Subscribe("c", noop)

	assert.Equal(t, []string{"a", "b", "c"}, bus.EventTypes())
	unsub()
	assert.Equal(t, []string{"b", "c"}, bus.EventTypes())
}

func TestEventBus_RetriesThenFails(t *testing.T) {
	bus := quietBus(BusConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	var attempts int
	bus.Subscribe("flaky", func(ctx context.Context, event Event) error {
		attempts++
		return errors.New("boom")
	})

	err := bus.Publish(context.Background(), NewEvent("flaky", nil, "test"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, attempts)
}

func TestEventBus_RetrySucceeds(t *testing.T) {
	bus := quietBus(BusConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	var attempts int
	bus.Subscribe("flaky", func(ctx context.Context, event Event) error {
		attempts++
		if attempts < 2 {
			return errors.New("once")
		}
		return nil
	})

	assert.NoError(t, bus.Publish(context.Background(), NewEvent("flaky", nil, "test")))
	assert.Equal(t, 2, attempts)
}

func TestEventBus_RetryStopsOnCancel(t *testing.T) {
	bus := quietBus(BusConfig{MaxRetries: 5, RetryDelay: time.Hour})
	bus.Subscribe("flaky", func(ctx context.Context, event Event) error { return errors.New("boom") })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(ctx, NewEvent("flaky", nil, "test"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEventBus_PublishAndForget(t *testing.T) {
	bus := quietBus(DefaultBusConfig())
	done := make(chan struct{})
	bus.Subscribe("fire", func(ctx context.Context, event Event) error {
		close(done)
		return nil
	})

	bus.PublishAndForget(context.Background(), NewEvent("fire", nil, "test"))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}
