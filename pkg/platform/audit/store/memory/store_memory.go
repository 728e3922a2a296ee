// Package memory keeps recent audit events in process for development and tests.
package memory

import (
	"context"
	"sync"

	audit "scp-gateway/pkg/platform/audit"
)

// DefaultCapacity bounds how many events the store retains.
const DefaultCapacity = 10_000

// InMemoryStore retains the most recent events up to its capacity and drops
// the oldest beyond that.
type InMemoryStore struct {
	mu       sync.RWMutex
	events   []audit.Event
	capacity int
}

// Option configures an InMemoryStore.
type Option func(*InMemoryStore)

// WithCapacity overrides DefaultCapacity. Non-positive values are ignored.
func WithCapacity(n int) Option {
	return func(s *InMemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == s.capacity {
		copy(s.events, s.events[1:])
		s.events = s.events[:len(s.events)-1]
	}
	s.events = append(s.events, event)
	return nil
}

// ListByCustomer returns the retained events for one customer in append
// order. Events recorded before a customer was resolved sit under "".
func (s *InMemoryStore) ListByCustomer(_ context.Context, customerID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []audit.Event{}
	for _, e := range s.events {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Len reports how many events are retained.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
