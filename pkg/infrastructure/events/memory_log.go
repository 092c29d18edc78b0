package events

import (
	"sync"
	"time"
)

// MemoryLog keeps the audit log for one process
type MemoryLog struct {
	mu       sync.RWMutex
	entries  []Event
	byStream map[string][]int
	watchers map[int]watcher
	nextID   int
	clock    func() time.Time
}

type watcher struct {
	handler Handler
	types   map[string]bool
}

var _ Log = (*MemoryLog)(nil)

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		byStream: make(map[string][]int),
		watchers: make(map[int]watcher),
		clock:    time.Now,
	}
}

// Append records an event and hands it to matching watchers before returning.
// Watchers run outside the lock and may read the log.
func (l *MemoryLog) Append(stream, eventType string, data any) (Event, error) {
	l.mu.Lock()
	event := Event{
		Type:     eventType,
		Stream:   stream,
		Data:     data,
		At:       l.clock().UTC(),
		Version:  len(l.byStream[stream]) + 1,
		Sequence: len(l.entries) + 1,
	}
	l.byStream[stream] = append(l.byStream[stream], len(l.entries))
	l.entries = append(l.entries, event)

	var handlers []Handler
	for _, w := range l.watchers {
		if len(w.types) == 0 || w.types[eventType] {
			handlers = append(handlers, w.handler)
		}
	}
	l.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
	return event, nil
}

// Stream returns events of one stream starting at fromVersion
func (l *MemoryLog) Stream(stream string, fromVersion int) ([]Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	indexes := l.byStream[stream]
	start := max(fromVersion, 1) - 1
	if start >= len(indexes) {
		return []Event{}, nil
	}
	out := make([]Event, 0, len(indexes)-start)
	for _, i := range indexes[start:] {
		out = append(out, l.entries[i])
	}
	return out, nil
}

// Since returns every event after the given sequence number, in append order
func (l *MemoryLog) Since(sequence int) ([]Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := max(sequence, 0)
	if start >= len(l.entries) {
		return []Event{}, nil
	}
	return append([]Event(nil), l.entries[start:]...), nil
}

// Watch registers handler for the given types, or for every type when none
// are given. The returned func stops delivery.
func (l *MemoryLog) Watch(handler Handler, eventTypes ...string) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	types := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		types[t] = true
	}
	id := l.nextID
	l.nextID++
	l.watchers[id] = watcher{handler: handler, types: types}

	return func() {
		l.mu.Lock()
		delete(l.watchers, id)
		l.mu.Unlock()
	}
}
