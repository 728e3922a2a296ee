package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"scp-gateway/internal/auth/device"
	"scp-gateway/internal/auth/models"
	"scp-gateway/internal/auth/pkce"
	"scp-gateway/internal/directory"
	"scp-gateway/internal/notify"
	dErrors "scp-gateway/pkg/domain-errors"
	"scp-gateway/pkg/platform/audit"
	"scp-gateway/pkg/platform/sentinel"
	pstrings "scp-gateway/pkg/platform/strings"
	"scp-gateway/pkg/requestcontext"
)

const (
	minClientIDLength   = 3
	maxClientIDLength   = 100
	maxClientNameLength = 200
	maxStateLength      = 500
)

// Init opens a pending authorization request and mails a magic link. The
// directory is not consulted, so the response never reveals whether the email
// belongs to a customer.
func (s *Service) Init(ctx context.Context, req *models.InitRequest) (_ *models.InitResult, err error) {
	ctx, span := s.startSpan(ctx, "auth.init")
	defer func() { endSpan(span, err) }()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := validateInit(req); err != nil {
		s.recordAuthorization("init", "invalid")
		return nil, err
	}
	span.SetAttributes(attribute.String("client_id", req.ClientID))

	now := s.now(ctx)
	requestID, err := s.newSecret()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate request id")
	}
	linkToken, err := s.newSecret()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate magic link")
	}

	authReq := &models.AuthorizationRequest{
		ID:            requestID,
		Email:         req.Email,
		ClientID:      req.ClientID,
		ClientName:    req.ClientName,
		Scopes:        req.Scopes,
		CodeChallenge: req.CodeChallenge,
		RedirectURI:   req.RedirectURI,
		State:         req.State,
		Domain:        req.Domain,
		Status:        models.StatusPending,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.cfg.RequestTTL),
	}
	if err := s.authRequests.Save(ctx, authReq, s.cfg.RequestTTL); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store authorization request")
	}
	if err := s.authRequests.SaveMagicLink(ctx, linkToken, requestID, s.cfg.RequestTTL); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store magic link")
	}

	err = s.notifier.SendMagicLink(ctx, notify.MagicLinkMessage{
		Email:         req.Email,
		ClientName:    req.ClientName,
		Scopes:        req.Scopes,
		URL:           s.magicLinkURL(linkToken),
		AuthRequestID: requestID,
		ExpiresAt:     authReq.ExpiresAt,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to send magic link",
			"client_id", req.ClientID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		s.recordAuthorization("init", "notify_failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to send magic link")
	}

	s.recordAuthorization("init", "pending")
	s.logAudit(ctx, audit.Event{
		Action:          string(audit.EventAuthorizationRequested),
		Email:           req.Email,
		RequestingParty: req.ClientID,
		AuthRequestID:   requestID,
		Scopes:          req.Scopes,
	})

	return &models.InitResult{
		AuthRequestID: requestID,
		EmailSent:     true,
		ExpiresIn:     int(s.cfg.RequestTTL / time.Second),
		PollInterval:  int(s.cfg.PollInterval / time.Second),
	}, nil
}

func validateInit(req *models.InitRequest) error {
	if req.Email == "" {
		return dErrors.New(dErrors.CodeInvalidRequest, "email is required")
	}
	addr, err := mail.ParseAddress(req.Email)
	if err != nil || addr.Address != req.Email {
		return dErrors.New(dErrors.CodeInvalidRequest, "email is invalid")
	}
	if len(req.ClientID) < minClientIDLength || len(req.ClientID) > maxClientIDLength {
		return dErrors.New(dErrors.CodeInvalidRequest,
			fmt.Sprintf("client_id must be %d-%d characters", minClientIDLength, maxClientIDLength))
	}
	if req.ClientName == "" {
		req.ClientName = req.ClientID
	}
	if len(req.ClientName) > maxClientNameLength {
		return dErrors.New(dErrors.CodeInvalidRequest, "client_name is too long")
	}
	if len(req.Scopes) == 0 {
		return dErrors.New(dErrors.CodeInvalidRequest, "scopes are required")
	}
	if unknown := pstrings.Reject(req.Scopes, func(s string) bool { return models.Scope(s).IsValid() }); len(unknown) > 0 {
		return dErrors.New(dErrors.CodeInvalidRequest, "unsupported scope: "+strings.Join(unknown, " "))
	}
	if req.CodeChallenge == "" {
		return dErrors.New(dErrors.CodeInvalidRequest, "code_challenge is required")
	}
	if req.CodeChallengeMethod == "" {
		req.CodeChallengeMethod = models.CodeChallengeMethodS256
	}
	if req.CodeChallengeMethod != models.CodeChallengeMethodS256 {
		return dErrors.New(dErrors.CodeInvalidRequest, "code_challenge_method must be S256")
	}
	if err := pkce.ValidateChallenge(req.CodeChallenge); err != nil {
		return dErrors.New(dErrors.CodeInvalidRequest, "code_challenge is malformed")
	}
	if req.RedirectURI != "" {
		u, err := url.Parse(req.RedirectURI)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return dErrors.New(dErrors.CodeInvalidRequest, "redirect_uri must be an absolute URL")
		}
	}
	if len(req.State) > maxStateLength {
		return dErrors.New(dErrors.CodeInvalidRequest, "state is too long")
	}
	return nil
}

// Confirm redeems a magic link. It is the only step that consults the
// directory, and the only place an unknown account is reported, to the holder
// of the mailbox.
func (s *Service) Confirm(ctx context.Context, linkToken string) (err error) {
	ctx, span := s.startSpan(ctx, "auth.confirm")
	defer func() { endSpan(span, err) }()

	if linkToken == "" {
		return dErrors.New(dErrors.CodeInvalidOrExpiredLink, "invalid or expired link")
	}
	requestID, err := s.authRequests.ConsumeMagicLink(ctx, linkToken)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordAuthorization("confirm", "invalid_link")
			return dErrors.New(dErrors.CodeInvalidOrExpiredLink, "invalid or expired link")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume magic link")
	}

	now := s.now(ctx)
	authReq, err := s.authRequests.Find(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordAuthorization("confirm", "expired")
			return dErrors.New(dErrors.CodeRequestExpired, "authorization request expired")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authorization request")
	}
	if authReq.IsExpired(now) {
		s.recordAuthorization("confirm", "expired")
		return dErrors.New(dErrors.CodeRequestExpired, "authorization request expired")
	}
	if authReq.Status != models.StatusPending {
		return dErrors.New(dErrors.CodeInvalidOrExpiredLink, "invalid or expired link")
	}
	span.SetAttributes(attribute.String("client_id", authReq.ClientID))

	customer, err := s.directory.VerifyCustomer(ctx, authReq.Email)
	switch {
	case errors.Is(err, directory.ErrCustomerNotFound):
		return s.deny(ctx, authReq, "")
	case err != nil:
		s.logger.ErrorContext(ctx, "directory lookup failed",
			"auth_request_id", authReq.ID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify customer")
	case !customer.Verified:
		return s.deny(ctx, authReq, customer.ID)
	}

	code, err := s.newSecret()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate authorization code")
	}
	record := &models.AuthorizationCodeRecord{
		Code:          code,
		CustomerEmail: authReq.Email,
		CustomerID:    customer.ID,
		ClientID:      authReq.ClientID,
		Scopes:        authReq.Scopes,
		CodeChallenge: authReq.CodeChallenge,
		ExpiresAt:     now.Add(s.cfg.CodeTTL),
		CreatedAt:     now,
	}
	// The code row must exist before the request is marked authorized.
	if err := s.codes.Create(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store authorization code")
	}

	authReq.Authorize(customer.ID, code)
	if err := s.authRequests.Update(ctx, authReq); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update authorization request")
	}

	s.recordAuthorization("confirm", "authorized")
	s.logger.InfoContext(ctx, "authorization confirmed",
		"auth_request_id", authReq.ID,
		"client_id", authReq.ClientID,
		"customer_id", customer.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.logAudit(ctx, audit.Event{
		Action:          string(audit.EventAuthorizationConfirmed),
		CustomerID:      customer.ID,
		Email:           authReq.Email,
		RequestingParty: authReq.ClientID,
		AuthRequestID:   authReq.ID,
		Scopes:          authReq.Scopes,
		Decision:        "granted",
		Device:          device.ParseUserAgent(requestcontext.UserAgent(ctx)),
	})
	return nil
}

func (s *Service) deny(ctx context.Context, authReq *models.AuthorizationRequest, customerID string) error {
	authReq.Deny(customerID)
	if err := s.authRequests.Update(ctx, authReq); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update authorization request")
	}
	s.recordAuthorization("confirm", "denied")
	s.logAudit(ctx, audit.Event{
		Action:          string(audit.EventAuthorizationDenied),
		CustomerID:      customerID,
		Email:           authReq.Email,
		RequestingParty: authReq.ClientID,
		AuthRequestID:   authReq.ID,
		Decision:        "denied",
		Reason:          "customer_not_found",
		Device:          device.ParseUserAgent(requestcontext.UserAgent(ctx)),
	})
	return dErrors.New(dErrors.CodeCustomerNotFound, "customer not found")
}

// Poll reports the state of an authorization request. It never mutates state.
func (s *Service) Poll(ctx context.Context, requestID, clientID string) (_ *models.PollResult, err error) {
	ctx, span := s.startSpan(ctx, "auth.poll")
	defer func() { endSpan(span, err) }()

	if requestID == "" || clientID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidRequest, "auth_request_id and client_id are required")
	}

	authReq, err := s.authRequests.Find(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return &models.PollResult{Status: models.StatusExpired}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authorization request")
	}
	if authReq.ClientID != clientID {
		return nil, dErrors.New(dErrors.CodeInvalidClientID, "client_id does not match")
	}

	now := s.now(ctx)
	if authReq.IsExpired(now) {
		return &models.PollResult{Status: models.StatusExpired}, nil
	}

	result := &models.PollResult{
		Status:    authReq.Status,
		ExpiresIn: int(authReq.ExpiresAt.Sub(now) / time.Second),
	}
	if authReq.Status == models.StatusAuthorized {
		result.Code = authReq.Code
	}
	return result, nil
}
