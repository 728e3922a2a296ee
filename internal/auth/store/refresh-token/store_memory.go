package refreshtoken

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

var errDuplicateToken = errors.New("refresh token value already in use")

// MemoryStore indexes grants by their current token value. Rows keep their
// ID across rotations, matching the Postgres store.
type MemoryStore struct {
	mu     sync.Mutex
	seq    int64
	byHash map[string]*models.RefreshTokenRecord
}

// New returns an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{byHash: map[string]*models.RefreshTokenRecord{}}
}

func (s *MemoryStore) Create(_ context.Context, rec *models.RefreshTokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byHash[rec.Token]; dup {
		return fmt.Errorf("insert refresh token: %w", errDuplicateToken)
	}
	s.seq++
	rec.ID = s.seq
	s.byHash[rec.Token] = copyRecord(rec)
	return nil
}

func (s *MemoryStore) Find(_ context.Context, token string) (*models.RefreshTokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byHash[token]
	if !ok {
		return nil, fmt.Errorf("find refresh token: %w", sentinel.ErrNotFound)
	}
	return copyRecord(rec), nil
}

// Rotate re-keys the grant under newToken. A second rotation of the same
// oldToken finds nothing and fails with sentinel.ErrNotFound.
func (s *MemoryStore) Rotate(_ context.Context, oldToken, newToken string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byHash[oldToken]
	if !ok {
		return fmt.Errorf("rotate refresh token: %w", sentinel.ErrNotFound)
	}
	if _, dup := s.byHash[newToken]; dup {
		return fmt.Errorf("rotate refresh token: %w", errDuplicateToken)
	}
	delete(s.byHash, oldToken)
	rec.Token = newToken
	rec.LastUsed = &now
	s.byHash[newToken] = rec
	return nil
}

func (s *MemoryStore) DeleteByToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byHash, token)
	return nil
}

func (s *MemoryStore) DeleteExpiredTokens(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.byHash)
	for token, rec := range s.byHash {
		if rec.ExpiresAt.Before(now) {
			delete(s.byHash, token)
		}
	}
	return before - len(s.byHash), nil
}

func copyRecord(r *models.RefreshTokenRecord) *models.RefreshTokenRecord {
	out := *r
	out.Scopes = slices.Clone(r.Scopes)
	if r.LastUsed != nil {
		t := *r.LastUsed
		out.LastUsed = &t
	}
	return &out
}
