package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"scp-gateway/internal/auth/models"
	"scp-gateway/internal/auth/pkce"
	dErrors "scp-gateway/pkg/domain-errors"
	"scp-gateway/pkg/platform/audit"
	"scp-gateway/pkg/platform/sentinel"
	"scp-gateway/pkg/requestcontext"
)

// Token dispatches on grant_type.
func (s *Service) Token(ctx context.Context, req *models.TokenRequest) (*models.TokenResult, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		s.recordGrantFailure(req.GrantType, err)
		return nil, err
	}

	var (
		result *models.TokenResult
		err    error
	)
	switch models.GrantType(req.GrantType) {
	case models.GrantAuthorizationCode:
		result, err = s.exchangeAuthorizationCode(ctx, req)
	case models.GrantRefreshToken:
		result, err = s.refreshWithRefreshToken(ctx, req)
	default:
		err = dErrors.New(dErrors.CodeUnsupportedGrantType, "unsupported grant_type")
	}
	if err != nil {
		s.recordGrantFailure(req.GrantType, err)
		if dErrors.Is(err, dErrors.CodeInvalidGrant) {
			s.logAudit(ctx, audit.Event{
				Action:          string(audit.EventGrantRejected),
				RequestingParty: req.ClientID,
				Reason:          req.GrantType,
			})
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncrementTokensIssued(req.GrantType)
	}
	return result, nil
}

// invalidGrant is deliberately uniform: callers cannot tell a missing code
// from an expired, replayed, foreign or PKCE-mismatched one.
func invalidGrant() error {
	return dErrors.New(dErrors.CodeInvalidGrant, "invalid_grant")
}

func (s *Service) exchangeAuthorizationCode(ctx context.Context, req *models.TokenRequest) (_ *models.TokenResult, err error) {
	ctx, span := s.startSpan(ctx, "auth.exchange")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("client_id", req.ClientID))

	record, err := s.codes.FindUnused(ctx, req.Code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, invalidGrant()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authorization code")
	}

	now := s.now(ctx)
	if record.IsExpired(now) || record.ClientID != req.ClientID {
		return nil, invalidGrant()
	}
	if err := pkce.Verify(req.CodeVerifier, record.CodeChallenge); err != nil {
		return nil, invalidGrant()
	}

	var (
		accessToken  string
		refreshToken string
	)
	err = s.tx.Run(ctx, func(ctx context.Context) error {
		// Redeem before minting so a lost race never yields tokens.
		if err := s.codes.MarkUsed(ctx, record.Code); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) || errors.Is(err, sentinel.ErrNotFound) {
				return invalidGrant()
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to redeem authorization code")
		}

		var err error
		accessToken, _, err = s.tokens.GenerateAccessToken(record.CustomerID, record.CustomerEmail, record.ClientID, record.Scopes)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate access token")
		}
		refreshToken, err = s.newSecret()
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate refresh token")
		}
		err = s.refreshTokens.Create(ctx, &models.RefreshTokenRecord{
			Token:         refreshToken,
			CustomerEmail: record.CustomerEmail,
			CustomerID:    record.CustomerID,
			ClientID:      record.ClientID,
			Scopes:        record.Scopes,
			ExpiresAt:     now.Add(s.cfg.RefreshTokenTTL),
			CreatedAt:     now,
		})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create refresh token")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "authorization code exchanged",
		"client_id", record.ClientID,
		"customer_id", record.CustomerID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.logAudit(ctx, audit.Event{
		Action:          string(audit.EventCodeExchanged),
		CustomerID:      record.CustomerID,
		RequestingParty: record.ClientID,
		Scopes:          record.Scopes,
	})

	return &models.TokenResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    models.TokenTypeBearer,
		ExpiresIn:    int(s.tokens.TTL() / time.Second),
		Scope:        models.JoinScopes(record.Scopes),
		CustomerID:   record.CustomerID,
		Email:        record.CustomerEmail,
	}, nil
}

// refreshWithRefreshToken rotates the refresh token in place. The scope set
// is copied from the stored grant, never from the request.
func (s *Service) refreshWithRefreshToken(ctx context.Context, req *models.TokenRequest) (_ *models.TokenResult, err error) {
	ctx, span := s.startSpan(ctx, "auth.refresh")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("client_id", req.ClientID))

	record, err := s.refreshTokens.Find(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, invalidGrant()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load refresh token")
	}

	now := s.now(ctx)
	if record.IsExpired(now) || record.ClientID != req.ClientID {
		return nil, invalidGrant()
	}

	accessToken, _, err := s.tokens.GenerateAccessToken(record.CustomerID, record.CustomerEmail, record.ClientID, record.Scopes)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate access token")
	}
	newRefresh, err := s.newSecret()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate refresh token")
	}
	if err := s.refreshTokens.Rotate(ctx, req.RefreshToken, newRefresh, now); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, invalidGrant()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to rotate refresh token")
	}

	s.logAudit(ctx, audit.Event{
		Action:          string(audit.EventTokenRefreshed),
		CustomerID:      record.CustomerID,
		RequestingParty: record.ClientID,
		Scopes:          record.Scopes,
	})

	return &models.TokenResult{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		TokenType:    models.TokenTypeBearer,
		ExpiresIn:    int(s.tokens.TTL() / time.Second),
		Scope:        models.JoinScopes(record.Scopes),
	}, nil
}

// Revoke deletes a refresh token. Unknown tokens revoke successfully.
func (s *Service) Revoke(ctx context.Context, token string) (_ *models.RevokeResult, err error) {
	ctx, span := s.startSpan(ctx, "auth.revoke")
	defer func() { endSpan(span, err) }()

	if token == "" {
		return nil, dErrors.New(dErrors.CodeInvalidRequest, "token is required")
	}

	record, findErr := s.refreshTokens.Find(ctx, token)
	if err := s.refreshTokens.DeleteByToken(ctx, token); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	if findErr == nil {
		s.logAudit(ctx, audit.Event{
			Action:          string(audit.EventTokenRevoked),
			CustomerID:      record.CustomerID,
			RequestingParty: record.ClientID,
		})
	}
	return &models.RevokeResult{Status: "revoked"}, nil
}

func (s *Service) recordGrantFailure(grantType string, err error) {
	if s.metrics != nil {
		s.metrics.IncrementTokenGrantFailure(grantType, string(dErrors.CodeOf(err)))
	}
}
