package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"scp-gateway/internal/auth/models"
	"scp-gateway/internal/directory"
	jwttoken "scp-gateway/internal/jwt_token"
	"scp-gateway/internal/notify"
	"scp-gateway/internal/platform/metrics"
	"scp-gateway/pkg/platform/audit"
	"scp-gateway/pkg/platform/tx"
	"scp-gateway/pkg/requestcontext"
)

// AuthRequestStore holds pending authorization requests and magic links in the transient store.
type AuthRequestStore interface {
	Save(ctx context.Context, req *models.AuthorizationRequest, ttl time.Duration) error
	Find(ctx context.Context, id string) (*models.AuthorizationRequest, error)
	Update(ctx context.Context, req *models.AuthorizationRequest) error
	SaveMagicLink(ctx context.Context, token, requestID string, ttl time.Duration) error
	ConsumeMagicLink(ctx context.Context, token string) (string, error)
}

// AuthCodeStore persists single-use authorization codes.
type AuthCodeStore interface {
	Create(ctx context.Context, authCode *models.AuthorizationCodeRecord) error
	FindUnused(ctx context.Context, code string) (*models.AuthorizationCodeRecord, error)
	MarkUsed(ctx context.Context, code string) error
	DeleteExpiredCodes(ctx context.Context, now time.Time) (int, error)
}

// RefreshTokenStore persists refresh grants.
type RefreshTokenStore interface {
	Create(ctx context.Context, token *models.RefreshTokenRecord) error
	Find(ctx context.Context, token string) (*models.RefreshTokenRecord, error)
	Rotate(ctx context.Context, oldToken, newToken string, now time.Time) error
	DeleteByToken(ctx context.Context, token string) error
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error)
}

// TokenIssuer mints access tokens.
type TokenIssuer interface {
	GenerateAccessToken(customerID, email, clientID string, scopes []string) (string, *jwttoken.AccessTokenClaims, error)
	TTL() time.Duration
}

// AuditPublisher records audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Transactor runs durable-store mutations atomically. The in-memory
// deployment uses tx.NoopRunner.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Config carries artifact lifetimes and the magic-link landing URL.
type Config struct {
	RequestTTL      time.Duration
	PollInterval    time.Duration
	CodeTTL         time.Duration
	RefreshTokenTTL time.Duration
	// ConfirmURL is the absolute URL of the confirm endpoint; the magic-link
	// token is appended as the "token" query parameter.
	ConfirmURL string
}

// Service orchestrates the magic-link authorization flow and token lifecycle.
type Service struct {
	authRequests  AuthRequestStore
	codes         AuthCodeStore
	refreshTokens RefreshTokenStore
	tokens        TokenIssuer
	directory     directory.Directory
	notifier      notify.Notifier

	cfg            Config
	tx             Transactor
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	clock          func() time.Time
	random         io.Reader
	tracer         trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

func WithTransactor(tx Transactor) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

// WithClock overrides the request-scoped time. Tests use it to step past expiries.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithRandom overrides the entropy source for ids, codes and tokens.
func WithRandom(r io.Reader) Option {
	return func(s *Service) {
		if r != nil {
			s.random = r
		}
	}
}

func New(
	authRequests AuthRequestStore,
	codes AuthCodeStore,
	refreshTokens RefreshTokenStore,
	tokens TokenIssuer,
	dir directory.Directory,
	notifier notify.Notifier,
	cfg Config,
	opts ...Option,
) (*Service, error) {
	if authRequests == nil || codes == nil || refreshTokens == nil {
		return nil, fmt.Errorf("auth service: stores are required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("auth service: token issuer is required")
	}
	if dir == nil || notifier == nil {
		return nil, fmt.Errorf("auth service: directory and notifier are required")
	}
	if cfg.RequestTTL <= 0 || cfg.CodeTTL <= 0 || cfg.RefreshTokenTTL <= 0 || cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("auth service: lifetimes must be positive")
	}
	if cfg.ConfirmURL == "" {
		return nil, fmt.Errorf("auth service: confirm URL is required")
	}

	s := &Service{
		authRequests:  authRequests,
		codes:         codes,
		refreshTokens: refreshTokens,
		tokens:        tokens,
		directory:     dir,
		notifier:      notifier,
		cfg:           cfg,
		tx:            tx.NoopRunner{},
		logger:        slog.Default(),
		random:        rand.Reader,
		tracer:        otel.Tracer("scp-gateway/internal/auth/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) now(ctx context.Context) time.Time {
	if s.clock != nil {
		return s.clock()
	}
	return requestcontext.Now(ctx)
}

// newSecret returns 32 random bytes, base64url encoded without padding.
func (s *Service) newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *Service) magicLinkURL(token string) string {
	sep := "?"
	if strings.Contains(s.cfg.ConfirmURL, "?") {
		sep = "&"
	}
	return s.cfg.ConfirmURL + sep + "token=" + token
}

func (s *Service) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
}

// endSpan records err on the span before ending it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func (s *Service) recordAuthorization(step, outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementAuthorization(step, outcome)
	}
}
