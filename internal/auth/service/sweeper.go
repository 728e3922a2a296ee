package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"scp-gateway/internal/platform/metrics"
)

// Sweeper periodically deletes expired authorization codes and refresh
// tokens. Transient records expire in the KV store on their own.
type Sweeper struct {
	codes    AuthCodeStore
	tokens   RefreshTokenStore
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	clock    func() time.Time
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

func WithSweeperLogger(logger *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithSweeperMetrics(m *metrics.Metrics) SweeperOption {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

func WithSweeperClock(clock func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewSweeper(codes AuthCodeStore, tokens RefreshTokenStore, interval time.Duration, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		codes:    codes,
		tokens:   tokens,
		interval: interval,
		logger:   slog.Default(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps every interval until ctx is cancelled. Sweep failures are logged
// and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.WarnContext(ctx, "sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce deletes both tables' expired rows concurrently.
func (s *Sweeper) SweepOnce(ctx context.Context) (codes int, tokens int, err error) {
	now := s.clock()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.codes.DeleteExpiredCodes(gctx, now)
		codes = n
		return err
	})
	g.Go(func() error {
		n, err := s.tokens.DeleteExpiredTokens(gctx, now)
		tokens = n
		return err
	})
	err = g.Wait()

	if s.metrics != nil {
		s.metrics.AddSwept("auth_codes", codes)
		s.metrics.AddSwept("refresh_tokens", tokens)
	}
	if codes > 0 || tokens > 0 {
		s.logger.InfoContext(ctx, "swept expired grants", "auth_codes", codes, "refresh_tokens", tokens)
	}
	return codes, tokens, err
}
