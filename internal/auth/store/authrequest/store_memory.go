package authrequest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"scp-gateway/internal/auth/models"
	"scp-gateway/pkg/platform/sentinel"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// InMemoryStore keeps authorization requests in process memory for tests/dev.
// Entries are evicted lazily on read once their TTL has passed.
type InMemoryStore struct {
	mu         sync.Mutex
	requests   map[string]entry
	magicLinks map[string]entry
	clock      func() time.Time
}

// Option configures an InMemoryStore.
type Option func(*InMemoryStore)

// WithClock sets the clock used for TTL eviction.
func WithClock(clock func() time.Time) Option {
	return func(s *InMemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		requests:   make(map[string]entry),
		magicLinks: make(map[string]entry),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Save(_ context.Context, req *models.AuthorizationRequest, ttl time.Duration) error {
	payload, err := encode(req)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = entry{payload: payload, expiresAt: s.clock().Add(ttl)}
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, id string) (*models.AuthorizationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(s.requests, id)
	if !ok {
		return nil, fmt.Errorf("authorization request not found: %w", sentinel.ErrNotFound)
	}
	return decode(e.payload)
}

// Update overwrites an existing request and keeps its remaining TTL.
func (s *InMemoryStore) Update(_ context.Context, req *models.AuthorizationRequest) error {
	payload, err := encode(req)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(s.requests, req.ID)
	if !ok {
		return fmt.Errorf("authorization request not found: %w", sentinel.ErrNotFound)
	}
	s.requests[req.ID] = entry{payload: payload, expiresAt: e.expiresAt}
	return nil
}

func (s *InMemoryStore) SaveMagicLink(_ context.Context, token, requestID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.magicLinks[token] = entry{payload: []byte(requestID), expiresAt: s.clock().Add(ttl)}
	return nil
}

// ConsumeMagicLink returns the request ID and deletes the mapping in one step.
func (s *InMemoryStore) ConsumeMagicLink(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(s.magicLinks, token)
	if !ok {
		return "", fmt.Errorf("magic link not found: %w", sentinel.ErrNotFound)
	}
	delete(s.magicLinks, token)
	return string(e.payload), nil
}

// live must be called with mu held.
func (s *InMemoryStore) live(m map[string]entry, key string) (entry, bool) {
	e, ok := m[key]
	if !ok {
		return entry{}, false
	}
	if !s.clock().Before(e.expiresAt) {
		delete(m, key)
		return entry{}, false
	}
	return e, true
}
