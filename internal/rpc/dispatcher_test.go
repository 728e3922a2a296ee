package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"scp-gateway/internal/customerdata"
	datamocks "scp-gateway/internal/customerdata/mocks"
	"scp-gateway/internal/intent"
	"scp-gateway/internal/platform/metrics"
)

type DispatcherSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	data       *datamocks.MockProvider
	metrics    *metrics.Metrics
	dispatcher *Dispatcher
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.data = datamocks.NewMockProvider(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.dispatcher = NewDispatcher(s.data, intent.NewService(intent.NewInMemoryStore()), WithMetrics(s.metrics))
}

func (s *DispatcherSuite) TearDownTest() {
	s.ctrl.Finish()
}

func grantWith(scopes ...string) Grant {
	return Grant{CustomerID: "cust_001", ClientID: "demo-agent", Scopes: scopes}
}

func call(id, method, params string) Request {
	req := Request{JSONRPC: Version, ID: json.RawMessage(id), Method: method}
	if params != "" {
		req.Params = json.RawMessage(params)
	}
	return req
}

func (s *DispatcherSuite) TestScopeGate() {
	s.Run("granted scope reaches the provider", func() {
		s.data.EXPECT().Orders(gomock.Any(), "cust_001", defaultOrderLimit).
			Return([]customerdata.Order{{ID: "ord_1"}}, nil)

		resp := s.dispatcher.Dispatch(context.Background(), grantWith("orders"), call(`7`, MethodGetOrders, ""))
		s.Nil(resp.Error)
		s.JSONEq(`7`, string(resp.ID))
	})

	s.Run("missing scope is forbidden and names the scope", func() {
		resp := s.dispatcher.Dispatch(context.Background(), grantWith("orders"), call(`"abc"`, MethodGetLoyalty, ""))
		s.Require().NotNil(resp.Error)
		s.Equal(CodeForbiddenScope, resp.Error.Code)
		s.Equal("loyalty", resp.Error.Data["required_scope"])
		s.JSONEq(`"abc"`, string(resp.ID))
	})

	s.Run("fulfill requires intent:write", func() {
		resp := s.dispatcher.Dispatch(context.Background(), grantWith("intent:create", "intent:read"),
			call(`1`, MethodFulfillIntent, `{"intent_id":"x"}`))
		s.Require().NotNil(resp.Error)
		s.Equal(CodeForbiddenScope, resp.Error.Code)
		s.Equal("intent:write", resp.Error.Data["required_scope"])
	})
}

func (s *DispatcherSuite) TestUnknownMethod() {
	resp := s.dispatcher.Dispatch(context.Background(), grantWith("orders"), call(`{"n":1}`, "scp.delete_everything", ""))
	s.Require().NotNil(resp.Error)
	s.Equal(CodeMethodNotFound, resp.Error.Code)
	s.JSONEq(`{"n":1}`, string(resp.ID))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.RPCCalls.WithLabelValues("unknown", "method_not_found")))
}

func (s *DispatcherSuite) TestInvalidParams() {
	s.Run("wrong shape", func() {
		resp := s.dispatcher.Dispatch(context.Background(), grantWith("orders"), call(`1`, MethodGetOrders, `{"limit":"ten"}`))
		s.Require().NotNil(resp.Error)
		s.Equal(CodeInvalidParams, resp.Error.Code)
	})

	s.Run("limit out of range", func() {
		resp := s.dispatcher.Dispatch(context.Background(), grantWith("orders"), call(`1`, MethodGetOrders, `{"limit":500}`))
		s.Require().NotNil(resp.Error)
		s.Equal(CodeInvalidParams, resp.Error.Code)
	})

	s.Run("create without intent_type", func() {
		resp := s.dispatcher.Dispatch(context.Background(), grantWith("intent:create"), call(`1`, MethodCreateIntent, `{}`))
		s.Require().NotNil(resp.Error)
		s.Equal(CodeInvalidParams, resp.Error.Code)
	})
}

func (s *DispatcherSuite) TestProviderFailureIsInternal() {
	s.data.EXPECT().Offers(gomock.Any(), "cust_001").Return(nil, errors.New("upstream timeout"))

	resp := s.dispatcher.Dispatch(context.Background(), grantWith("offers"), call(`3`, MethodGetOffers, ""))
	s.Require().NotNil(resp.Error)
	s.Equal(CodeInternal, resp.Error.Code)
	s.Equal("internal_error", resp.Error.Message)
	s.Nil(resp.Error.Data)
}

func (s *DispatcherSuite) TestPanicIsRecovered() {
	s.data.EXPECT().Preferences(gomock.Any(), "cust_001").DoAndReturn(
		func(context.Context, string) (*customerdata.Preferences, error) {
			panic("boom")
		})

	resp := s.dispatcher.Dispatch(context.Background(), grantWith("preferences"), call(`"p"`, MethodGetPreferences, ""))
	s.Require().NotNil(resp.Error)
	s.Equal(CodeInternal, resp.Error.Code)
	s.JSONEq(`"p"`, string(resp.ID))
}

func (s *DispatcherSuite) TestIntentLifecycle() {
	grant := grantWith("intent:create", "intent:read", "intent:write")
	ctx := context.Background()

	created := s.dispatcher.Dispatch(ctx, grant, call(`1`, MethodCreateIntent, `{"intent_type":"purchase","context":{"item":"jacket"}}`))
	s.Require().Nil(created.Error)
	in := created.Result.(map[string]any)["intent"].(*intent.Intent)

	missing := s.dispatcher.Dispatch(ctx, grant, call(`2`, MethodUpdateIntent, `{"intent_id":"nope","status":"x"}`))
	s.Require().NotNil(missing.Error)
	s.Equal(CodeNotFound, missing.Error.Code)

	fulfilled := s.dispatcher.Dispatch(ctx, grant, call(`3`, MethodFulfillIntent, `{"intent_id":"`+in.ID+`","order_id":"ord_9"}`))
	s.Require().Nil(fulfilled.Error)

	listed := s.dispatcher.Dispatch(ctx, grant, call(`4`, MethodGetIntents, `{"status":"fulfilled"}`))
	s.Require().Nil(listed.Error)
	intents := listed.Result.(map[string]any)["intents"].([]intent.Intent)
	s.Require().Len(intents, 1)
	s.Equal(in.ID, intents[0].ID)
	s.Equal(intent.StatusFulfilled, intents[0].Status)
}

func (s *DispatcherSuite) TestMethodsAdvertisesScopes() {
	methods := s.dispatcher.Methods()
	s.Len(methods, 8)
	s.Equal("orders", methods[MethodGetOrders])
	s.Equal("intent:write", methods[MethodFulfillIntent])
	s.Equal("intent:create", methods[MethodCreateIntent])
}
