// Package events publishes entity lifecycle events to RabbitMQ.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EntityCreated EventType = "created"
	EntityUpdated EventType = "updated"
)

// Event is the JSON body published for every stored entity change.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Kind       string    `json:"kind"`
	RecordID   string    `json:"record_id"`
	Owner      string    `json:"owner"`
	Version    int       `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEntityEvent(t EventType, kind, recordID, owner string, version int) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Kind:       kind,
		RecordID:   recordID,
		Owner:      owner,
		Version:    version,
		OccurredAt: time.Now().UTC(),
	}
}

// RoutingKey is entity.<kind>.<type>, e.g. entity.CareerPath.created.
func (e Event) RoutingKey() string {
	return fmt.Sprintf("entity.%s.%s", e.Kind, e.Type)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
