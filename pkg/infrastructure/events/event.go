package events

import (
	"fmt"
	"time"
)

// Event is one entry of the session audit log
type Event struct {
	Type   string
	Stream string
	Data   any
	At     time.Time

	// Version counts events within Stream and Sequence counts them across
	// the whole log. Both start at 1.
	Version  int
	Sequence int
}

// Describe renders the payload for operators
func (e Event) Describe() string {
	if s, ok := e.Data.(fmt.Stringer); ok {
		return s.String()
	}
	if e.Data == nil {
		return ""
	}
	return fmt.Sprintf("%+v", e.Data)
}

// Handler receives events a watcher registered for
type Handler func(Event)

// Log is an append-only audit log split into streams
type Log interface {
	Append(stream, eventType string, data any) (Event, error)
	Stream(stream string, fromVersion int) ([]Event, error)
	Since(sequence int) ([]Event, error)
	Watch(handler Handler, eventTypes ...string) (cancel func())
}
