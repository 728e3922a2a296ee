//go:build integration

package refreshtoken

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"scp-gateway/pkg/platform/sentinel"
	"scp-gateway/pkg/testutil/containers"
)

type PostgresRefreshTokenSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *PostgresStore
	ctx      context.Context
}

func TestPostgresRefreshTokenSuite(t *testing.T) {
	suite.Run(t, new(PostgresRefreshTokenSuite))
}

func (s *PostgresRefreshTokenSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresRefreshTokenSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(s.ctx))
}

func (s *PostgresRefreshTokenSuite) TestRotateKeepsRowIdentity() {
	now := time.Now().UTC().Truncate(time.Microsecond)
	record := newToken("pg_ref_old", now.Add(time.Hour))
	s.Require().NoError(s.store.Create(s.ctx, record))
	s.NotZero(record.ID)

	s.Require().NoError(s.store.Rotate(s.ctx, "pg_ref_old", "pg_ref_new", now))

	rotated, err := s.store.Find(s.ctx, "pg_ref_new")
	s.Require().NoError(err)
	s.Equal(record.ID, rotated.ID)
	s.Equal([]string{"orders", "intent:read"}, rotated.Scopes)
	s.Require().NotNil(rotated.LastUsed)
	s.True(rotated.LastUsed.Equal(now))

	_, err = s.store.Find(s.ctx, "pg_ref_old")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresRefreshTokenSuite) TestConcurrentRotateHasSingleWinner() {
	s.Require().NoError(s.store.Create(s.ctx, newToken("pg_ref_race", time.Now().Add(time.Hour))))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.store.Rotate(s.ctx, "pg_ref_race", fmt.Sprintf("pg_ref_race_%d", i), time.Now()); err == nil {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()
	s.Equal(int32(1), wins.Load())
}

func (s *PostgresRefreshTokenSuite) TestDeleteByTokenIsIdempotent() {
	s.Require().NoError(s.store.Create(s.ctx, newToken("pg_ref_del", time.Now().Add(time.Hour))))
	s.Require().NoError(s.store.DeleteByToken(s.ctx, "pg_ref_del"))
	s.Require().NoError(s.store.DeleteByToken(s.ctx, "pg_ref_del"))
}

func (s *PostgresRefreshTokenSuite) TestDeleteExpiredTokens() {
	now := time.Now()
	s.Require().NoError(s.store.Create(s.ctx, newToken("pg_ref_expired", now.Add(-time.Minute))))
	s.Require().NoError(s.store.Create(s.ctx, newToken("pg_ref_live", now.Add(time.Minute))))

	deleted, err := s.store.DeleteExpiredTokens(s.ctx, now)
	s.Require().NoError(err)
	s.Equal(1, deleted)
}
