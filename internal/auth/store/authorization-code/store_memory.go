package authorizationcode

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"scp-gateway/internal/auth/models"
	"scp-gateway/pkg/platform/sentinel"
)

var errDuplicateCode = errors.New("authorization code already issued")

// MemoryStore keeps codes in a map guarded by one mutex, which makes
// MarkUsed a true compare-and-set within the process.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]models.AuthorizationCodeRecord
}

// New returns an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{codes: map[string]models.AuthorizationCodeRecord{}}
}

func (s *MemoryStore) Create(_ context.Context, rec *models.AuthorizationCodeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.codes[rec.Code]; dup {
		return fmt.Errorf("insert authorization code: %w", errDuplicateCode)
	}
	stored := *rec
	stored.Scopes = slices.Clone(rec.Scopes)
	s.codes[rec.Code] = stored
	return nil
}

func (s *MemoryStore) FindUnused(_ context.Context, code string) (*models.AuthorizationCodeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.codes[code]
	if !ok || rec.Used {
		return nil, fmt.Errorf("find authorization code: %w", sentinel.ErrNotFound)
	}
	rec.Scopes = slices.Clone(rec.Scopes)
	return &rec, nil
}

func (s *MemoryStore) MarkUsed(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.codes[code]
	switch {
	case !ok:
		return fmt.Errorf("mark authorization code used: %w", sentinel.ErrNotFound)
	case rec.Used:
		return fmt.Errorf("mark authorization code used: %w", sentinel.ErrAlreadyUsed)
	}
	rec.Used = true
	s.codes[code] = rec
	return nil
}

// DeleteExpiredCodes drops every code whose expiry is before now, used or not.
func (s *MemoryStore) DeleteExpiredCodes(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.codes)
	for code, rec := range s.codes {
		if rec.ExpiresAt.Before(now) {
			delete(s.codes, code)
		}
	}
	return before - len(s.codes), nil
}
