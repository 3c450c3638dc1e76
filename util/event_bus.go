// util/event_bus.go

package util

import (
	"context"
	"sync"

	"go.uber.org/zap"

	logger "github.com/retailhq/console/logging"
)

// Event carries a resource-change notification through the console.
// Type is dotted, e.g. "products.updated"; Resource is the collection the
// change touched and Payload the decoded entity when one is available.
type Event struct {
	Type     string
	Resource string
	Payload  interface{}
}

// EventHandler is a function that handles an event
type EventHandler func(context.Context, Event) error

// EventBus fans resource-change events out to subscribers. Delivery is
// synchronous and in subscription order so a cache-invalidation handler
// has run before the publisher's next read.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]EventHandler
}

// NewEventBus creates a new EventBus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]EventHandler),
	}
}

// Subscribe adds a new subscriber for a specific event type. The wildcard
// type "*" receives every event.
func (eb *EventBus) Subscribe(eventType string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], handler)
}

// Publish delivers the event to every matching subscriber. Handler errors
// are logged, never returned; publishing must not fail the caller's
// operation.
func (eb *EventBus) Publish(ctx context.Context, event Event) {
	eb.mu.RLock()
	handlers := make([]EventHandler, 0, len(eb.subscribers[event.Type])+len(eb.subscribers["*"]))
	handlers = append(handlers, eb.subscribers[event.Type]...)
	handlers = append(handlers, eb.subscribers["*"]...)
	eb.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			logger.Error("Event handler error",
				zap.Error(err),
				zap.String("eventType", event.Type),
				zap.String("resource", event.Resource))
		}
	}
}
