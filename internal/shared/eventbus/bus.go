package eventbus

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"mongo-tracing/internal/shared/logger"
)

// Event represents a generic event
type Event interface {
	Type() string
	Data() interface{}
	Timestamp() time.Time
	Source() string
}

// Handler defines the event handler function type
type Handler func(ctx context.Context, event Event) error

// Bus is the contract the orders module publishes change events through.
type Bus interface {
	Subscribe(eventType string, handler Handler) (unsubscribe func())
	Publish(ctx context.Context, event Event) error
	PublishAndForget(ctx context.Context, event Event)
	SubscriberCount(eventType string) int
	EventTypes() []string
}

// EventBus is an in-memory Bus. Handlers subscribed to the same type run in
// subscription order unless AsyncProcessing is set.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	nextID   uint64
	logger   logger.Logger
	config   BusConfig
}

type subscription struct {
	id      uint64
	handler Handler
}

// BusConfig holds configuration for the event bus
type BusConfig struct {
	AsyncProcessing bool
	MaxRetries      int
	RetryDelay      time.Duration
}

// DefaultBusConfig returns default configuration
func DefaultBusConfig() BusConfig {
	return BusConfig{
		AsyncProcessing: false,
		MaxRetries:      3,
		RetryDelay:      100 * time.Millisecond,
	}
}

var _ Bus = (*EventBus)(nil)

// NewEventBus creates a new event bus instance
func NewEventBus(log logger.Logger) *EventBus {
	return NewEventBusWithConfig(log, DefaultBusConfig())
}

// NewEventBusWithConfig creates a new event bus with custom configuration.
// A nil logger falls back to the package default.
func NewEventBusWithConfig(log logger.Logger, config BusConfig) *EventBus {
	if log == nil {
		log = logger.Default()
	}
	return &EventBus{
		handlers: make(map[string][]subscription),
		logger:   log.WithComponent("eventbus"),
		config:   config,
	}
}

// Subscribe adds a handler for eventType. Calling the returned function
// removes that handler only; it is safe to call more than once.
func (eb *EventBus) Subscribe(eventType string, handler Handler) func() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextID++
	id := eb.nextID
	eb.handlers[eventType] = append(eb.handlers[eventType], subscription{id: id, handler: handler})
	eb.logger.Debugf("Subscribed handler %d for event type: %s", id, eventType)

	var once sync.Once
	return func() {
		once.Do(func() { eb.unsubscribe(eventType, id) })
	}
}

func (eb *EventBus) unsubscribe(eventType string, id uint64) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.handlers[eventType]
	kept := make([]subscription, 0, len(subs))
	for _, s := range subs {
		if s.id != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		delete(eb.handlers, eventType)
	} else {
		eb.handlers[eventType] = kept
	}
	eb.logger.Debugf("Unsubscribed handler %d for event type: %s", id, eventType)
}

// Publish sends an event to all registered handlers
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	subs := append([]subscription(nil), eb.handlers[event.Type()]...)
	eb.mu.RUnlock()

	if len(subs) == 0 {
		eb.logger.Debugf("No handlers found for event type: %s", event.Type())
		return nil
	}

	if eb.config.AsyncProcessing {
		return eb.publishAsync(ctx, event, subs)
	}
	return eb.publishSync(ctx, event, subs)
}

func (eb *EventBus) publishSync(ctx context.Context, event Event, subs []subscription) error {
	for _, s := range subs {
		if err := eb.executeHandler(ctx, event, s); err != nil {
			return err
		}
	}
	return nil
}

func (eb *EventBus) publishAsync(ctx context.Context, event Event, subs []subscription) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(subs))

	for _, s := range subs {
		wg.Add(1)
		go func(s subscription) {
			defer wg.Done()
			if err := eb.executeHandler(ctx, event, s); err != nil {
				errCh <- err
			}
		}(s)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// executeHandler executes a handler with retry logic. Retries stop early
// once ctx is done.
func (eb *EventBus) executeHandler(ctx context.Context, event Event, s subscription) error {
	var lastErr error

	for attempt := 0; attempt <= eb.config.MaxRetries; attempt++ {
		if attempt > 0 {
			eb.logger.Warnf("Retrying handler %d for event %s (attempt %d/%d)",
				s.id, event.Type(), attempt+1, eb.config.MaxRetries+1)
			select {
			case <-time.After(eb.config.RetryDelay):
			case <-ctx.Done():
				return fmt.Errorf("handler %d for event %s: %w", s.id, event.Type(), ctx.Err())
			}
		}

		if err := s.handler(ctx, event); err != nil {
			lastErr = err
			eb.logger.Errorf("Handler %d failed for event %s: %v", s.id, event.Type(), err)
			continue
		}
		return nil
	}

	return fmt.Errorf("handler failed after %d attempts: %w", eb.config.MaxRetries+1, lastErr)
}

// PublishAndForget publishes an event asynchronously without waiting for completion
func (eb *EventBus) PublishAndForget(ctx context.Context, event Event) {
	go func() {
		if err := eb.Publish(ctx, event); err != nil {
			eb.logger.Errorf("Failed to publish event %s: %v", event.Type(), err)
		}
	}()
}

// SubscriberCount returns the number of handlers for an event type
func (eb *EventBus) SubscriberCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}

// EventTypes returns every event type with at least one handler, sorted.
func (eb *EventBus) EventTypes() []string {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	types := make([]string, 0, len(eb.handlers))
	for eventType := range eb.handlers {
		types = append(types, eventType)
	}
	sort.Strings(types)
	return types
}

// BasicEvent implements the Event interface
type BasicEvent struct {
	eventType string
	data      interface{}
	timestamp time.Time
	source    string
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType string, data interface{}, source string) Event {
	return &BasicEvent{
		eventType: eventType,
		data:      data,
		timestamp: time.Now(),
		source:    source,
	}
}

func (e *BasicEvent) Type() string {
	return e.eventType
}

func (e *BasicEvent) Data() interface{} {
	return e.data
}

func (e *BasicEvent) Timestamp() time.Time {
	return e.timestamp
}

func (e *BasicEvent) Source() string {
	return e.source
}

// Event types published by the orders module.
const (
	EventTypeOrderChanged = "order.changed"
)
