package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a registry lifecycle event.
type EventType string

const (
	EventRegistered   EventType = "webapp.registered"
	EventDeregistered EventType = "webapp.deregistered"
	EventPruned       EventType = "webapp.pruned"
)

// Event is emitted on the reporter's bus.
type Event struct {
	Type      EventType `json:"type"`
	Webapp    Webapp    `json:"webapp"`
	Timestamp time.Time `json:"timestamp"`
}

// EventCallback handles a registry event.
type EventCallback func(ctx context.Context, event Event) error

// emit publishes an event if the reporter has a bus.
func (r *Reporter) emit(eventType EventType, app Webapp) {
	if r.bus == nil {
		return
	}
	r.bus.Emit(string(eventType), Event{
		Type:      eventType,
		Webapp:    app,
		Timestamp: time.Now(),
	})
}

// Subscribe registers a callback for an event type and returns an id for Unsubscribe.
func (r *Reporter) Subscribe(eventType EventType, callback EventCallback) string {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	unsubscribe := r.bus.Subscribe(string(eventType), func(ctx context.Context, event Event) error {
		return callback(ctx, event)
	})
	id := uuid.New().String()
	r.subscriptions[id] = unsubscribe
	return id
}

// Unsubscribe removes a subscription by its id.
func (r *Reporter) Unsubscribe(id string) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	if unsubscribe, ok := r.subscriptions[id]; ok {
		unsubscribe()
		delete(r.subscriptions, id)
	}
}
