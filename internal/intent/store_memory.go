package intent

import (
	"context"
	"sync"
)

// InMemoryStore keeps the activity log per customer.
type InMemoryStore struct {
	mu         sync.RWMutex
	seq        int64
	activities map[string][]Activity
}

// NewInMemoryStore constructs an empty log.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{activities: make(map[string][]Activity)}
}

func (s *InMemoryStore) Append(_ context.Context, activity *Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	activity.Seq = s.seq
	s.activities[activity.CustomerID] = append(s.activities[activity.CustomerID], cloneActivity(*activity))
	return nil
}

func (s *InMemoryStore) ListByCustomer(_ context.Context, customerID string) ([]Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.activities[customerID]
	out := make([]Activity, len(log))
	for i, a := range log {
		out[i] = cloneActivity(a)
	}
	return out, nil
}

func (s *InMemoryStore) Exists(_ context.Context, customerID, intentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.activities[customerID] {
		if a.IntentID == intentID && a.Kind == KindCreated {
			return true, nil
		}
	}
	return false, nil
}

func cloneActivity(a Activity) Activity {
	if a.Status != nil {
		status := *a.Status
		a.Status = &status
	}
	a.Payload.Context = append([]byte(nil), a.Payload.Context...)
	a.Payload.Data = append([]byte(nil), a.Payload.Data...)
	if len(a.Payload.Context) == 0 {
		a.Payload.Context = nil
	}
	if len(a.Payload.Data) == 0 {
		a.Payload.Data = nil
	}
	return a
}
