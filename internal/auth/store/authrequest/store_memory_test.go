package authrequest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"scp-gateway/internal/auth/models"
	"scp-gateway/pkg/platform/sentinel"
)

// Authorization requests and magic links carry the single-use and TTL
// guarantees the confirm flow relies on.
type InMemoryStoreSuite struct {
	suite.Suite
	now   time.Time
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemory(WithClock(func() time.Time { return s.now }))
}

func (s *InMemoryStoreSuite) newRequest(id string) *models.AuthorizationRequest {
	return &models.AuthorizationRequest{
		ID:            id,
		Email:         "a@example.com",
		ClientID:      "agent-client",
		Scopes:        []string{"orders"},
		CodeChallenge: "challenge",
		Status:        models.StatusPending,
		CreatedAt:     s.now,
		ExpiresAt:     s.now.Add(10 * time.Minute),
	}
}

func (s *InMemoryStoreSuite) TestRequestLifecycle() {
	ctx := context.Background()

	s.Run("saved request can be found", func() {
		req := s.newRequest("req-1")
		s.Require().NoError(s.store.Save(ctx, req, 10*time.Minute))

		found, err := s.store.Find(ctx, "req-1")
		s.Require().NoError(err)
		s.Equal(req.Email, found.Email)
		s.Equal(models.StatusPending, found.Status)
	})

	s.Run("returned request is a copy", func() {
		found, err := s.store.Find(ctx, "req-1")
		s.Require().NoError(err)
		found.Status = models.StatusAuthorized

		again, err := s.store.Find(ctx, "req-1")
		s.Require().NoError(err)
		s.Equal(models.StatusPending, again.Status)
	})

	s.Run("update persists status and keeps ttl", func() {
		found, err := s.store.Find(ctx, "req-1")
		s.Require().NoError(err)
		found.Authorize("cust-1", "code-1")
		s.Require().NoError(s.store.Update(ctx, found))

		s.now = s.now.Add(9 * time.Minute)
		updated, err := s.store.Find(ctx, "req-1")
		s.Require().NoError(err)
		s.Equal(models.StatusAuthorized, updated.Status)
		s.Equal("code-1", updated.Code)

		s.now = s.now.Add(2 * time.Minute)
		_, err = s.store.Find(ctx, "req-1")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("update of missing request fails", func() {
		err := s.store.Update(ctx, s.newRequest("missing"))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestMagicLinkConsumption() {
	ctx := context.Background()

	s.Run("consumes exactly once", func() {
		s.Require().NoError(s.store.SaveMagicLink(ctx, "tok-1", "req-1", 10*time.Minute))

		requestID, err := s.store.ConsumeMagicLink(ctx, "tok-1")
		s.Require().NoError(err)
		s.Equal("req-1", requestID)

		_, err = s.store.ConsumeMagicLink(ctx, "tok-1")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("expired link is not found", func() {
		s.Require().NoError(s.store.SaveMagicLink(ctx, "tok-2", "req-2", time.Minute))
		s.now = s.now.Add(time.Minute)

		_, err := s.store.ConsumeMagicLink(ctx, "tok-2")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("concurrent consumers see one success", func() {
		s.Require().NoError(s.store.SaveMagicLink(ctx, "tok-3", "req-3", 10*time.Minute))

		const workers = 16
		var wg sync.WaitGroup
		var successes atomic.Int32
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.store.ConsumeMagicLink(ctx, "tok-3"); err == nil {
					successes.Add(1)
				}
			}()
		}
		wg.Wait()
		s.Equal(int32(1), successes.Load())
	})
}
