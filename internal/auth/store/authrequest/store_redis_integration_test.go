//go:build integration

package authrequest_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"scp-gateway/internal/auth/models"
	"scp-gateway/internal/auth/store/authrequest"
	"scp-gateway/pkg/platform/sentinel"
	"scp-gateway/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *authrequest.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = authrequest.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestClientReady() {
	s.NoError(s.redis.Client.Ready(context.Background()))
}

func (s *RedisStoreSuite) TestUpdateKeepsTTL() {
	ctx := context.Background()
	req := &models.AuthorizationRequest{
		ID:        "req-ttl",
		Email:     "a@example.com",
		ClientID:  "agent-client",
		Scopes:    []string{"orders"},
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	s.Require().NoError(s.store.Save(ctx, req, 10*time.Minute))

	req.Authorize("cust-1", "code-1")
	s.Require().NoError(s.store.Update(ctx, req))

	ttl, err := s.redis.Client.TTL(ctx, "scp:authreq:req-ttl").Result()
	s.Require().NoError(err)
	s.Greater(ttl, 9*time.Minute)

	found, err := s.store.Find(ctx, "req-ttl")
	s.Require().NoError(err)
	s.Equal(models.StatusAuthorized, found.Status)
}

func (s *RedisStoreSuite) TestUpdateDoesNotResurrectExpiredRequest() {
	err := s.store.Update(context.Background(), &models.AuthorizationRequest{ID: "gone"})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentMagicLinkConsume verifies GETDEL hands the request ID to one caller.
func (s *RedisStoreSuite) TestConcurrentMagicLinkConsume() {
	ctx := context.Background()
	s.Require().NoError(s.store.SaveMagicLink(ctx, "tok-race", "req-race", time.Minute))

	const goroutines = 20
	var wg sync.WaitGroup
	var successCount atomic.Int32
	var notFoundCount atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.ConsumeMagicLink(ctx, "tok-race")
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrNotFound):
				notFoundCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one confirm should resolve the link")
	s.Equal(int32(goroutines-1), notFoundCount.Load())
}
