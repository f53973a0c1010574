package audit

import (
	"context"
	"sync"
)

// MemorySink keeps events in process. It is the default sink when no broker
// is configured.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) Append(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// ListByUser returns the events attributed to userID in append order.
func (m *MemorySink) ListByUser(_ context.Context, userID string) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Event
	for _, e := range m.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// All returns a copy of every recorded event.
func (m *MemorySink) All() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
