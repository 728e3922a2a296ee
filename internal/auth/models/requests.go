package models

import (
	"strings"

	dErrors "scp-gateway/pkg/domain-errors"
)

// GrantType enumerates the supported token grants.
type GrantType string

const (
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantRefreshToken      GrantType = "refresh_token"
)

// CodeChallengeMethodS256 is the only supported PKCE transform.
const CodeChallengeMethodS256 = "S256"

// TokenTypeBearer is the token_type returned by every grant.
const TokenTypeBearer = "Bearer"

// InitRequest starts an authorization request.
type InitRequest struct {
	Email               string   `json:"email"`
	ClientID            string   `json:"client_id"`
	ClientName          string   `json:"client_name"`
	Scopes              []string `json:"scopes"`
	CodeChallenge       string   `json:"code_challenge"`
	CodeChallengeMethod string   `json:"code_challenge_method"`
	RedirectURI         string   `json:"redirect_uri"`
	State               string   `json:"state"`
	Domain              string   `json:"domain"`
}

// Normalize trims inputs and canonicalizes the email and scope set.
func (r *InitRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.ClientName = strings.TrimSpace(r.ClientName)
	r.CodeChallenge = strings.TrimSpace(r.CodeChallenge)
	r.CodeChallengeMethod = strings.TrimSpace(r.CodeChallengeMethod)
	r.RedirectURI = strings.TrimSpace(r.RedirectURI)
	r.Domain = strings.ToLower(strings.TrimSpace(r.Domain))
	r.Scopes = NormalizeScopes(r.Scopes)
}

// InitResult is returned by init.
type InitResult struct {
	AuthRequestID string `json:"auth_request_id"`
	EmailSent     bool   `json:"email_sent"`
	ExpiresIn     int    `json:"expires_in"`
	PollInterval  int    `json:"poll_interval"`
}

// PollResult reports the state of an authorization request.
type PollResult struct {
	Status    AuthorizationStatus `json:"status"`
	Code      string              `json:"code,omitempty"`
	ExpiresIn int                 `json:"expires_in,omitempty"`
}

// TokenRequest covers both token grants.
type TokenRequest struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
	CodeVerifier string `json:"code_verifier"`
	RefreshToken string `json:"refresh_token"`
	ClientID     string `json:"client_id"`
}

// Normalize trims every field.
func (r *TokenRequest) Normalize() {
	r.GrantType = strings.TrimSpace(r.GrantType)
	r.Code = strings.TrimSpace(r.Code)
	r.CodeVerifier = strings.TrimSpace(r.CodeVerifier)
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
	r.ClientID = strings.TrimSpace(r.ClientID)
}

// Validate checks the fields required by the selected grant.
func (r *TokenRequest) Validate() error {
	if r.ClientID == "" {
		return dErrors.New(dErrors.CodeInvalidRequest, "client_id is required")
	}
	switch GrantType(r.GrantType) {
	case GrantAuthorizationCode:
		if r.Code == "" {
			return dErrors.New(dErrors.CodeInvalidRequest, "code is required")
		}
		if r.CodeVerifier == "" {
			return dErrors.New(dErrors.CodeInvalidRequest, "code_verifier is required")
		}
	case GrantRefreshToken:
		if r.RefreshToken == "" {
			return dErrors.New(dErrors.CodeInvalidRequest, "refresh_token is required")
		}
	case "":
		return dErrors.New(dErrors.CodeInvalidRequest, "grant_type is required")
	default:
		return dErrors.New(dErrors.CodeUnsupportedGrantType, "unsupported grant_type")
	}
	return nil
}

// TokenResult is the token endpoint response. CustomerID and Email are only
// set by the authorization_code grant.
type TokenResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	CustomerID   string `json:"customer_id,omitempty"`
	Email        string `json:"email,omitempty"`
}

// RevokeResult is always {status: revoked}.
type RevokeResult struct {
	Status string `json:"status"`
}
