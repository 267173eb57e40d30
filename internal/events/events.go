// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package events carries signals from the data layer to whatever presents them.
// The data layer never prints or navigates; it publishes an Event and the
// presentation layer (the CLI commands) decides what to show or do.
package events

import "sync"

// Type enumerates known event kinds.
type Type string

const (
	// Success is published once after a write completes.
	Success Type = "success"
	// Failure is published once after a write fails.
	Failure Type = "failure"
	// SessionExpired is published when the service rejected the credential (401).
	SessionExpired Type = "session_expired"
)

// Event is a generic container for presentation events.
// Only a subset of fields is set depending on Type.
type Event struct {
	Type Type `json:"type"`

	// Operation names the write that produced the event (e.g. "create_application").
	Operation string `json:"operation,omitempty"`

	// Message is the human-readable text to render.
	Message string `json:"message,omitempty"`

	// Err is the failure cause for Failure and SessionExpired events.
	Err error `json:"-"`
}

// Handler receives published events.
type Handler func(Event)

// Bus fans events out to subscribed handlers synchronously, in subscription order.
// A nil *Bus is valid and drops every event.
type Bus struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]Handler
	order    []int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.handlers[id] = h
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers e to every current subscriber.
// Handlers run outside the bus lock and may subscribe or publish themselves.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		hs = append(hs, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}
}

// Recorder collects events; it is handy for tests and for batching output.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Handle implements Handler.
func (r *Recorder) Handle(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many recorded events have the given type.
func (r *Recorder) Count(t Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}
