package models

import "time"

// AuthorizationStatus is the state of a pending authorization request.
type AuthorizationStatus string

const (
	StatusPending    AuthorizationStatus = "pending"
	StatusAuthorized AuthorizationStatus = "authorized"
	StatusDenied     AuthorizationStatus = "denied"
	// StatusExpired is only ever reported by poll; it is never stored.
	StatusExpired AuthorizationStatus = "expired"
)

// AuthorizationRequest lives in the transient store for its whole lifetime.
// Code is set iff Status is authorized.
type AuthorizationRequest struct {
	ID            string              `json:"id"`
	Email         string              `json:"email"`
	CustomerID    string              `json:"customer_id,omitempty"`
	ClientID      string              `json:"client_id"`
	ClientName    string              `json:"client_name"`
	Scopes        []string            `json:"scopes"`
	CodeChallenge string              `json:"code_challenge"`
	RedirectURI   string              `json:"redirect_uri,omitempty"`
	State         string              `json:"state,omitempty"`
	Domain        string              `json:"domain,omitempty"`
	Status        AuthorizationStatus `json:"status"`
	Code          string              `json:"code,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	ExpiresAt     time.Time           `json:"expires_at"`
}

// IsExpired compares against the stored expiry rather than trusting store eviction.
func (r *AuthorizationRequest) IsExpired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

// Authorize records a successful directory verification.
func (r *AuthorizationRequest) Authorize(customerID, code string) {
	r.Status = StatusAuthorized
	r.CustomerID = customerID
	r.Code = code
}

// Deny records a failed directory verification. customerID may be empty.
func (r *AuthorizationRequest) Deny(customerID string) {
	r.Status = StatusDenied
	r.CustomerID = customerID
	r.Code = ""
}

// AuthorizationCodeRecord is a durable, single-use authorization code.
// Used only ever flips from false to true.
type AuthorizationCodeRecord struct {
	Code          string
	CustomerEmail string
	CustomerID    string
	ClientID      string
	Scopes        []string
	CodeChallenge string
	ExpiresAt     time.Time
	Used          bool
	CreatedAt     time.Time
}

// IsExpired reports whether the code is past its expiry.
func (c *AuthorizationCodeRecord) IsExpired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}

// RefreshTokenRecord is a durable refresh grant. Rotation replaces Token in place.
type RefreshTokenRecord struct {
	ID            int64
	Token         string
	CustomerEmail string
	CustomerID    string
	ClientID      string
	Scopes        []string
	ExpiresAt     time.Time
	CreatedAt     time.Time
	LastUsed      *time.Time
}

// IsExpired reports whether the refresh token is past its expiry.
func (t *RefreshTokenRecord) IsExpired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
