//go:build integration

package intent

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"scp-gateway/pkg/testutil/containers"
)

type PostgresIntentSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *PostgresStore
	ctx      context.Context
}

func TestPostgresIntentSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntentSuite))
}

func (s *PostgresIntentSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgresStore(s.postgres.Pool)
	s.ctx = context.Background()
}

func (s *PostgresIntentSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(s.ctx))
}

func (s *PostgresIntentSuite) TestAppendAndListPreservesOrder() {
	now := time.Now().UTC().Truncate(time.Microsecond)
	created := StatusCreated
	fulfilled := StatusFulfilled

	first := &Activity{
		CustomerID: "cust_001",
		IntentID:   "pg-intent",
		Kind:       KindCreated,
		Status:     &created,
		Payload:    Payload{IntentType: "purchase", Context: json.RawMessage(`{"budget":80}`)},
		CreatedAt:  now,
	}
	second := &Activity{
		CustomerID: "cust_001",
		IntentID:   "pg-intent",
		Kind:       KindUpdated,
		Status:     &fulfilled,
		Payload:    Payload{OrderID: "ord_1"},
		CreatedAt:  now.Add(time.Second),
	}
	third := &Activity{
		CustomerID: "cust_001",
		IntentID:   "pg-intent",
		Kind:       KindUpdated,
		Payload:    Payload{Milestone: "review left"},
		CreatedAt:  now.Add(2 * time.Second),
	}
	for _, a := range []*Activity{first, second, third} {
		s.Require().NoError(s.store.Append(s.ctx, a))
		s.NotZero(a.Seq)
	}
	s.Less(first.Seq, second.Seq)

	activities, err := s.store.ListByCustomer(s.ctx, "cust_001")
	s.Require().NoError(err)
	s.Require().Len(activities, 3)
	s.Nil(activities[2].Status)
	s.JSONEq(`{"budget":80}`, string(activities[0].Payload.Context))

	intents := Fold(activities)
	s.Require().Len(intents, 1)
	s.Equal(StatusFulfilled, intents[0].Status)
	s.True(intents[0].UpdatedAt.Equal(now.Add(time.Second)))
}

func (s *PostgresIntentSuite) TestExistsIsScopedToCustomer() {
	created := StatusCreated
	s.Require().NoError(s.store.Append(s.ctx, &Activity{
		CustomerID: "cust_001",
		IntentID:   "scoped",
		Kind:       KindCreated,
		Status:     &created,
		CreatedAt:  time.Now(),
	}))

	ok, err := s.store.Exists(s.ctx, "cust_001", "scoped")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.Exists(s.ctx, "cust_002", "scoped")
	s.Require().NoError(err)
	s.False(ok)
}
