// Package memory provides an in-memory audit sink for tests and single-node
// deployments without a broker.
package memory

import (
	"context"
	"sync"

	"domainlens/pkg/platform/audit"
)

// Store accumulates audit events in order of delivery.
type Store struct {
	mu     sync.Mutex
	events []audit.Event
}

// NewStore builds an empty in-memory sink.
func NewStore() *Store {
	return &Store{}
}

// Publish appends the event.
func (s *Store) Publish(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything delivered so far.
func (s *Store) Events() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}

// ByAction filters delivered events by action.
func (s *Store) ByAction(action audit.Action) []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}
