// Package events is the in-process bus that carries collection change notifications.
package events

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Event types published by the services.
const (
	RoomCreated       = "room.created"
	RoomUpdated       = "room.updated"
	RoomStatusChanged = "room.status_changed"
	RoomDeleted       = "room.deleted"
	UserCreated       = "user.created"
	UserUpdated       = "user.updated"
	UserDeleted       = "user.deleted"
	BookingCreated    = "booking.created"
	BookingUpdated    = "booking.updated"
	BookingDeleted    = "booking.deleted"
)

// BookingTypes lists the events that change the booking view.
var BookingTypes = []string{BookingCreated, BookingUpdated, BookingDeleted}

// AllTypes lists every event the services publish.
var AllTypes = []string{
	RoomCreated, RoomUpdated, RoomStatusChanged, RoomDeleted,
	UserCreated, UserUpdated, UserDeleted,
	BookingCreated, BookingUpdated, BookingDeleted,
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler reacts to an event.
type EventHandler func(event Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	seq         atomic.Int64
	logger      *zerolog.Logger

	asyncMu sync.Mutex
	closed  bool
	wg      sync.WaitGroup
}

// NewEventBus constructs an empty bus. Handler failures are logged to logger.
func NewEventBus(logger *zerolog.Logger) *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler), logger: logger}
}

// Subscribe registers a handler for the given event types.
func (b *EventBus) Subscribe(handler EventHandler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range eventTypes {
		b.subscribers[t] = append(b.subscribers[t], handler)
	}
}

// SubscribeAsync registers a handler that runs on its own goroutine, so a
// publisher holding a lock never waits on network calls made by the handler.
// Events published after Close are dropped for async handlers.
func (b *EventBus) SubscribeAsync(handler EventHandler, eventTypes ...string) {
	b.Subscribe(func(e Event) error {
		b.asyncMu.Lock()
		defer b.asyncMu.Unlock()
		if b.closed {
			if b.logger != nil {
				b.logger.Debug().Str("event", e.Type).Int64("event_id", e.ID).Msg("Bus closed, dropping async event")
			}
			return nil
		}
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			if err := handler(e); err != nil && b.logger != nil {
				b.logger.Warn().Err(err).Str("event", e.Type).Int64("event_id", e.ID).Msg("Async event handler failed")
			}
		}()
		return nil
	}, eventTypes...)
}

// Close stops dispatching to async handlers and waits for the in-flight ones.
func (b *EventBus) Close() {
	b.asyncMu.Lock()
	b.closed = true
	b.asyncMu.Unlock()
	b.wg.Wait()
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.ID == 0 {
		event.ID = b.seq.Add(1)
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	// Handlers run synchronously; caller decides concurrency model.
	for _, handler := range handlers {
		if err := handler(event); err != nil && b.logger != nil {
			b.logger.Warn().Err(err).Str("event", event.Type).Int64("event_id", event.ID).Msg("Event handler failed")
		}
	}
}

// PublishJSON encodes payload and publishes it under eventType.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b.Publish(Event{Type: eventType, Payload: data})
	return nil
}
