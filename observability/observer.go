// Package observability provides event-based observability for the kernel
// subsystems. Subsystems emit lifecycle events through an Observer; the
// default observer forwards them to log/slog.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// EventType identifies the kind of event. Each subsystem defines its own
// constants using this type (e.g., "repl.submit", "repl.crashed").
type EventType string

// Event is one observability event. Data keys become structured log
// attributes when the event is emitted through a logger.
type Event struct {
	Type      EventType
	Level     slog.Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer receives events from subsystems for logging, tracing, or metrics.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// NoOp discards all events.
type NoOp struct{}

func (NoOp) OnEvent(ctx context.Context, event Event) {}

// Multi fans out events to every non-nil observer it was built from.
type Multi struct {
	observers []Observer
}

// NewMulti creates a fan-out observer. Nil entries are dropped.
func NewMulti(observers ...Observer) *Multi {
	filtered := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			filtered = append(filtered, obs)
		}
	}
	return &Multi{observers: filtered}
}

func (m *Multi) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}
