package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "scp-gateway/pkg/domain-errors"
)

// TokenTypeAccess is the only token type this codec mints.
const TokenTypeAccess = "access"

// AccessTokenClaims is the self-contained claim set of an access token.
// Subject carries the customer ID.
type AccessTokenClaims struct {
	Email    string   `json:"email"`
	Scopes   []string `json:"scopes"`
	Type     string   `json:"type"`
	ClientID string   `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// CustomerID returns the subject claim.
func (c *AccessTokenClaims) CustomerID() string {
	return c.Subject
}

// JWTService signs and verifies HS256 access tokens. It is stateless; the
// only inputs are the secret and the injected clock.
type JWTService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	clock      func() time.Time
}

// Option configures a JWTService.
type Option func(*JWTService)

// WithClock overrides time.Now for issuing and expiry checks.
func WithClock(clock func() time.Time) Option {
	return func(s *JWTService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIssuer sets the iss claim on minted tokens.
func WithIssuer(issuer string) Option {
	return func(s *JWTService) {
		s.issuer = issuer
	}
}

// WithTTL sets the access token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *JWTService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// DefaultAccessTokenTTL is exp - iat for minted tokens.
const DefaultAccessTokenTTL = time.Hour

func NewJWTService(signingKey []byte, opts ...Option) *JWTService {
	s := &JWTService{
		signingKey: signingKey,
		ttl:        DefaultAccessTokenTTL,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured access token lifetime.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// GenerateAccessToken mints an access token for the given grant.
func (s *JWTService) GenerateAccessToken(customerID, email, clientID string, scopes []string) (string, *AccessTokenClaims, error) {
	now := s.clock()
	claims := &AccessTokenClaims{
		Email:    email,
		Scopes:   scopes,
		Type:     TokenTypeAccess,
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := s.Sign(claims)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Sign encodes and signs an arbitrary claim set.
func (s *JWTService) Sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// ValidateToken verifies signature, algorithm and expiry, in that order.
func (s *JWTService) ValidateToken(tokenString string) (*AccessTokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenUnverifiable
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, translateParseError(err)
	}

	claims, ok := parsed.Claims.(*AccessTokenClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeMalformedToken, "invalid token claims")
	}
	if claims.Type != TokenTypeAccess || claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeMalformedToken, "invalid token claims")
	}
	return claims, nil
}

func translateParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return dErrors.New(dErrors.CodeMalformedToken, "malformed token")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return dErrors.New(dErrors.CodeInvalidSignature, "invalid token signature")
	case errors.Is(err, jwt.ErrTokenExpired):
		return dErrors.New(dErrors.CodeTokenExpired, "token has expired")
	default:
		return dErrors.New(dErrors.CodeMalformedToken, "invalid token claims")
	}
}
