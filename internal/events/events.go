// Package events publishes ledger events to interested consumers after the
// owning transaction has committed.
package events

import (
	"context"
	"sync"
	"time"
)

// Event types.
const (
	MovementCreated = "movement.created"
	MovementDeleted = "movement.deleted"
	BillPaid        = "bill.paid"
	BoxRolledOver   = "box.rolled_over"
	PrincipalSeeded = "principal.seeded"
)

// Event is a single ledger notification.
type Event struct {
	Type       string    `json:"type"`
	ResourceID string    `json:"resource_id"`
	BoxID      string    `json:"box_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// New builds an event stamped with the current time.
func New(eventType, resourceID, boxID string, payload any) Event {
	return Event{
		Type:       eventType,
		ResourceID: resourceID,
		BoxID:      boxID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Close implements Publisher.
func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types lists the recorded event types in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
