package store

import (
	"context"
	"time"
)

// EventType classifies lifecycle events worth persisting.
type EventType string

const (
	EventTransition EventType = "transition"
	EventEviction   EventType = "eviction"
	EventReap       EventType = "reap"
)

// Event is one persisted lifecycle occurrence.
type Event struct {
	ID         int64     `json:"id"`
	Type       EventType `json:"type"`
	PID        int32     `json:"pid"`
	Name       string    `json:"name"`
	FromState  string    `json:"from_state,omitempty"`
	ToState    string    `json:"to_state,omitempty"`
	Importance float64   `json:"importance"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Store persists lifecycle events. Implementations must be safe for use from
// the monitoring loop; writes are best-effort from the caller's perspective.
type Store interface {
	EnsureSchema(ctx context.Context) error
	RecordEvent(ctx context.Context, e Event) error
	EventsByPID(ctx context.Context, pid int32, limit int) ([]Event, error)
	Close() error
}
