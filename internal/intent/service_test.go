package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "scp-gateway/pkg/domain-errors"
	"scp-gateway/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	service *Service
	now     time.Time
	ids     int
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.ids = 0
	s.service = NewService(s.store, WithIDGenerator(func() string {
		s.ids++
		return fmt.Sprintf("intent-%d", s.ids)
	}))
}

func (s *ServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) advance(d time.Duration) {
	s.now = s.now.Add(d)
}

func (s *ServiceSuite) TestCreate() {
	s.Run("seeds a created intent", func() {
		in, err := s.service.Create(s.ctx(), "cust_001", CreateParams{
			IntentType: "purchase",
			Context:    json.RawMessage(`{"item":"running shoes"}`),
		})
		s.Require().NoError(err)
		s.Equal("intent-1", in.ID)
		s.Equal(StatusCreated, in.Status)
		s.Equal(s.now, in.CreatedAt)
		s.Empty(in.Milestones)
	})

	s.Run("missing intent_type is invalid params", func() {
		_, err := s.service.Create(s.ctx(), "cust_001", CreateParams{})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidParams))
	})

	s.Run("non-object context is invalid params", func() {
		_, err := s.service.Create(s.ctx(), "cust_001", CreateParams{
			IntentType: "purchase",
			Context:    json.RawMessage(`[1,2]`),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidParams))
	})
}

func (s *ServiceSuite) TestUpdateAndFulfill() {
	created, err := s.service.Create(s.ctx(), "cust_001", CreateParams{IntentType: "purchase"})
	s.Require().NoError(err)

	s.advance(time.Minute)
	status := "comparing"
	updated, err := s.service.Update(s.ctx(), "cust_001", UpdateParams{
		IntentID:  created.ID,
		Status:    &status,
		Milestone: "shortlisted",
		Data:      json.RawMessage(`{"count":3}`),
	})
	s.Require().NoError(err)
	s.Equal("comparing", updated.Status)
	s.Require().Len(updated.Milestones, 1)
	s.Equal("shortlisted", updated.Milestones[0].Milestone)

	s.advance(time.Minute)
	fulfilled, err := s.service.Fulfill(s.ctx(), "cust_001", FulfillParams{IntentID: created.ID, OrderID: "ord_1001"})
	s.Require().NoError(err)
	s.Equal(StatusFulfilled, fulfilled.Status)
	s.Equal(s.now, fulfilled.UpdatedAt)
	s.Require().Len(fulfilled.Milestones, 2)
	s.Equal("ord_1001", fulfilled.Milestones[1].OrderID)

	s.advance(time.Minute)
	noted, err := s.service.Update(s.ctx(), "cust_001", UpdateParams{IntentID: created.ID, Milestone: "thank-you sent"})
	s.Require().NoError(err)
	s.Equal(StatusFulfilled, noted.Status, "updates without status keep the last status")
	s.Equal(s.now.Add(-time.Minute), noted.UpdatedAt)
}

func (s *ServiceSuite) TestUnknownIntentIsNotFound() {
	_, err := s.service.Update(s.ctx(), "cust_001", UpdateParams{IntentID: "missing"})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.Fulfill(s.ctx(), "cust_001", FulfillParams{IntentID: "missing"})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestIntentsAreScopedToCustomer() {
	created, err := s.service.Create(s.ctx(), "cust_001", CreateParams{IntentType: "purchase"})
	s.Require().NoError(err)

	_, err = s.service.Fulfill(s.ctx(), "cust_002", FulfillParams{IntentID: created.ID})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	intents, err := s.service.List(s.ctx(), "cust_002", ListParams{})
	s.Require().NoError(err)
	s.Empty(intents)
}

func (s *ServiceSuite) TestListFiltersByStatus() {
	first, err := s.service.Create(s.ctx(), "cust_001", CreateParams{IntentType: "purchase"})
	s.Require().NoError(err)
	s.advance(time.Second)
	_, err = s.service.Create(s.ctx(), "cust_001", CreateParams{IntentType: "gift"})
	s.Require().NoError(err)
	_, err = s.service.Fulfill(s.ctx(), "cust_001", FulfillParams{IntentID: first.ID})
	s.Require().NoError(err)

	all, err := s.service.List(s.ctx(), "cust_001", ListParams{})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("intent-1", all[0].ID)
	s.Equal("intent-2", all[1].ID)

	fulfilled, err := s.service.List(s.ctx(), "cust_001", ListParams{Status: StatusFulfilled})
	s.Require().NoError(err)
	s.Require().Len(fulfilled, 1)
	s.Equal(first.ID, fulfilled[0].ID)
}
