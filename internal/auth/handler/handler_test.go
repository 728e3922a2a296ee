package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"scp-gateway/internal/auth/handler/mocks"
	"scp-gateway/internal/auth/models"
	dErrors "scp-gateway/pkg/domain-errors"
	"scp-gateway/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.router = chi.NewRouter()
	New(s.service, nil).Register(s.router)
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) TestInit() {
	s.Run("accepts a space-delimited scope string", func() {
		s.service.EXPECT().Init(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, req *models.InitRequest) (*models.InitResult, error) {
				s.Equal([]string{"orders", "loyalty"}, req.Scopes)
				s.Equal("ada@example.com", req.Email)
				return &models.InitResult{AuthRequestID: "req-1", EmailSent: true, ExpiresIn: 600, PollInterval: 2}, nil
			})

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/authorize/init", map[string]any{
			"email":          "ada@example.com",
			"client_id":      "demo-agent",
			"scope":          "orders loyalty",
			"code_challenge": "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		}))
		s.Equal(http.StatusOK, rr.Code)
		s.Equal("req-1", testutil.DecodeBody(s.T(), rr)["auth_request_id"])
		testutil.AssertNoStore(s.T(), rr)
	})

	s.Run("malformed body is invalid_request", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/authorize/init", `{`))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_request")
	})

	s.Run("validation errors keep their description", func() {
		s.service.EXPECT().Init(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInvalidRequest, "invalid email"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/authorize/init", `{"email":"nope"}`))
		s.Equal(http.StatusBadRequest, rr.Code)
		s.Equal("invalid email", testutil.DecodeBody(s.T(), rr)["error_description"])
	})
}

func (s *HandlerSuite) TestPoll() {
	s.Run("requires both parameters", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/authorize/poll?auth_request_id=req-1", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_request")
	})

	s.Run("client mismatch is 401", func() {
		s.service.EXPECT().Poll(gomock.Any(), "req-1", "other").
			Return(nil, dErrors.New(dErrors.CodeInvalidClientID, "client_id does not match"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/authorize/poll?auth_request_id=req-1&client_id=other", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "invalid_client_id")
	})

	s.Run("authorized returns the code", func() {
		s.service.EXPECT().Poll(gomock.Any(), "req-1", "demo-agent").
			Return(&models.PollResult{Status: models.StatusAuthorized, Code: "code-1", ExpiresIn: 300}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/authorize/poll?auth_request_id=req-1&client_id=demo-agent", nil))
		s.Equal(http.StatusOK, rr.Code)
		body := testutil.DecodeBody(s.T(), rr)
		s.Equal("authorized", body["status"])
		s.Equal("code-1", body["code"])
	})
}

func (s *HandlerSuite) TestConfirm() {
	s.Run("missing token is an invalid link", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/authorize/confirm", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_or_expired_link")
	})

	s.Run("expired request is 410", func() {
		s.service.EXPECT().Confirm(gomock.Any(), "tok").
			Return(dErrors.New(dErrors.CodeRequestExpired, "authorization request expired"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/authorize/confirm?token=tok", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusGone, "request_expired")
	})

	s.Run("unknown customer is 404", func() {
		s.service.EXPECT().Confirm(gomock.Any(), "tok").
			Return(dErrors.New(dErrors.CodeCustomerNotFound, "no account for this email"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/authorize/confirm?token=tok", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "customer_not_found")
	})

	s.Run("success renders the landing body", func() {
		s.service.EXPECT().Confirm(gomock.Any(), "tok").Return(nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/authorize/confirm?token=tok", nil))
		s.Equal(http.StatusOK, rr.Code)
		s.Equal("authorized", testutil.DecodeBody(s.T(), rr)["status"])
	})
}

func (s *HandlerSuite) TestToken() {
	s.Run("form encoded", func() {
		s.service.EXPECT().Token(gomock.Any(), &models.TokenRequest{
			GrantType:    "authorization_code",
			Code:         "code-1",
			CodeVerifier: "verifier",
			ClientID:     "demo-agent",
		}).Return(&models.TokenResult{AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer", ExpiresIn: 3600, Scope: "orders"}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewFormRequest(s.T(), "/v1/token", url.Values{
			"grant_type":    {"authorization_code"},
			"code":          {"code-1"},
			"code_verifier": {"verifier"},
			"client_id":     {"demo-agent"},
		}))
		s.Equal(http.StatusOK, rr.Code)
		testutil.AssertNoStore(s.T(), rr)
		body := testutil.DecodeBody(s.T(), rr)
		s.Equal("at", body["access_token"])
		s.Equal("Bearer", body["token_type"])
	})

	s.Run("json body", func() {
		s.service.EXPECT().Token(gomock.Any(), &models.TokenRequest{
			GrantType:    "refresh_token",
			RefreshToken: "rt",
			ClientID:     "demo-agent",
		}).Return(nil, dErrors.New(dErrors.CodeInvalidGrant, "invalid refresh token"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/token", map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": "rt",
			"client_id":     "demo-agent",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_grant")
	})

	s.Run("internal errors omit the description", func() {
		s.service.EXPECT().Token(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInternal, "db down at 10.0.0.4"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/token", `{"grant_type":"refresh_token"}`))
		s.Equal(http.StatusInternalServerError, rr.Code)
		body := testutil.DecodeBody(s.T(), rr)
		s.Equal("internal_error", body["error"])
		s.NotContains(body, "error_description")
	})
}

func (s *HandlerSuite) TestRevoke() {
	s.service.EXPECT().Revoke(gomock.Any(), "rt").Return(&models.RevokeResult{Status: "revoked"}, nil)

	req := testutil.NewFormRequest(s.T(), "/v1/revoke", url.Values{"token": {"rt"}})
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	rr := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusOK, rr.Code)
	s.Equal("revoked", testutil.DecodeBody(s.T(), rr)["status"])
}
