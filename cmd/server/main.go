package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	authhandler "scp-gateway/internal/auth/handler"
	"scp-gateway/internal/auth/service"
	authcodestore "scp-gateway/internal/auth/store/authorization-code"
	"scp-gateway/internal/auth/store/authrequest"
	refreshstore "scp-gateway/internal/auth/store/refresh-token"
	"scp-gateway/internal/customerdata"
	"scp-gateway/internal/directory"
	"scp-gateway/internal/intent"
	jwttoken "scp-gateway/internal/jwt_token"
	"scp-gateway/internal/notify"
	"scp-gateway/internal/platform/config"
	"scp-gateway/internal/platform/httpserver"
	"scp-gateway/internal/platform/logger"
	"scp-gateway/internal/platform/metrics"
	"scp-gateway/internal/platform/postgres"
	redisclient "scp-gateway/internal/platform/redis"
	"scp-gateway/internal/rpc"
	httptransport "scp-gateway/internal/transport/http"
	"scp-gateway/pkg/platform/audit"
	auditpublisher "scp-gateway/pkg/platform/audit/publisher"
	kafkastore "scp-gateway/pkg/platform/audit/store/kafka"
	auditmemory "scp-gateway/pkg/platform/audit/store/memory"
	auditpg "scp-gateway/pkg/platform/audit/store/postgres"
	"scp-gateway/pkg/platform/tx"
)

const (
	shutdownTimeout   = 10 * time.Second
	auditBufferSize   = 1024
	startupTimeout    = 15 * time.Second
	auditTopicTimeout = 10 * time.Second
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("scp-gateway exited", "error", err)
		os.Exit(1)
	}
}

// infra holds the backing connections; any of them may be nil when the
// in-memory fallback is configured.
type infra struct {
	redis *redisclient.Client
	db    *sql.DB
	pool  *pgxpool.Pool
}

func (i *infra) close() {
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.pool != nil {
		i.pool.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}

func (i *infra) readinessChecks() map[string]httptransport.ReadinessCheck {
	checks := map[string]httptransport.ReadinessCheck{}
	if i.redis != nil {
		checks["redis"] = i.redis.Ready
	}
	if i.db != nil {
		checks["postgres"] = i.db.PingContext
	}
	if i.pool != nil {
		checks["postgres_pool"] = i.pool.Ping
	}
	return checks
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	infra, err := openInfra(startCtx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	signingKey, err := jwttoken.DeriveKey(cfg.SigningSecret, jwttoken.AccessTokenKeyInfo)
	if err != nil {
		return err
	}
	tokens := jwttoken.NewJWTService(signingKey,
		jwttoken.WithIssuer(cfg.Issuer),
		jwttoken.WithTTL(cfg.Auth.AccessTokenTTL),
	)

	auditPub, closeAudit, err := buildAudit(startCtx, cfg, infra.db, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	authRequests, codes, refreshTokens, intents := buildStores(infra, log)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithAuditPublisher(auditPub),
	}
	if infra.db != nil {
		opts = append(opts, service.WithTransactor(tx.Runner{DB: infra.db}))
	}
	authService, err := service.New(
		authRequests,
		codes,
		refreshTokens,
		tokens,
		buildDirectory(cfg, log),
		notify.NewLogNotifier(log),
		service.Config{
			RequestTTL:      cfg.Auth.RequestTTL,
			PollInterval:    cfg.Auth.PollInterval,
			CodeTTL:         cfg.Auth.CodeTTL,
			RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
			ConfirmURL:      cfg.PublicBaseURL + "/v1/authorize/confirm",
		},
		opts...,
	)
	if err != nil {
		return err
	}

	dispatcher := rpc.NewDispatcher(
		customerdata.NewStatic(customerdata.DefaultFixtures()),
		intent.NewService(intents, intent.WithLogger(log)),
		rpc.WithLogger(log),
		rpc.WithMetrics(m),
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:          log,
		Metrics:         m,
		Gatherer:        reg,
		RequestTimeout:  cfg.HTTP.RequestTimeout,
		ReadinessChecks: infra.readinessChecks(),
		Discovery: httptransport.Discovery{
			Issuer:     cfg.Issuer,
			BaseURL:    cfg.PublicBaseURL,
			RPCMethods: dispatcher.Methods(),
		},
	},
		authhandler.New(authService, log),
		rpc.NewHandler(dispatcher, tokens, log),
	)
	srv := httpserver.New(cfg.Addr, cfg.HTTP, router)

	sweeper := service.NewSweeper(codes, refreshTokens, cfg.SweepInterval,
		service.WithSweeperLogger(log),
		service.WithSweeperMetrics(m),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting scp-gateway", "addr", cfg.Addr, "issuer", cfg.Issuer)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	out := &infra{}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	out.redis = rc

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		out.close()
		return nil, err
	}
	out.db = db
	if db != nil {
		if err := postgres.Migrate(ctx, db); err != nil {
			out.close()
			return nil, err
		}
		pool, err := postgres.OpenPool(ctx, cfg.Postgres)
		if err != nil {
			out.close()
			return nil, err
		}
		out.pool = pool
	}

	transient, durable := "memory", "memory"
	if out.redis != nil {
		transient = "redis"
	}
	if out.db != nil {
		durable = "postgres"
	}
	log.Info("backing stores selected", "transient", transient, "durable", durable)
	return out, nil
}

func buildStores(in *infra, log *slog.Logger) (service.AuthRequestStore, service.AuthCodeStore, service.RefreshTokenStore, intent.Store) {
	var authRequests service.AuthRequestStore = authrequest.NewInMemory()
	if in.redis != nil {
		authRequests = authrequest.NewRedis(in.redis.Client)
	}

	if in.db == nil {
		log.Warn("DATABASE_URL not set; codes, refresh tokens and intents will not survive a restart")
		return authRequests, authcodestore.New(), refreshstore.New(), intent.NewInMemoryStore()
	}
	return authRequests,
		authcodestore.NewPostgres(in.db),
		refreshstore.NewPostgres(in.db),
		intent.NewPostgresStore(in.pool)
}

func buildDirectory(cfg config.Server, log *slog.Logger) directory.Directory {
	if cfg.Directory.URL == "" {
		log.Warn("DIRECTORY_URL not set; using the fixture directory")
		return directory.NewStatic(directory.DefaultCustomers()...)
	}
	var opts []directory.HTTPOption
	if cfg.Directory.ClientID != "" && cfg.Directory.TokenURL != "" {
		opts = append(opts, directory.WithClientCredentials(
			cfg.Directory.ClientID,
			cfg.Directory.ClientSecret,
			cfg.Directory.TokenURL,
		))
	}
	return directory.NewHTTPClient(cfg.Directory.URL, cfg.Directory.Timeout, opts...)
}

func buildAudit(ctx context.Context, cfg config.Server, db *sql.DB, log *slog.Logger) (*auditpublisher.Publisher, func(), error) {
	var (
		store   audit.Store
		closers []func()
	)
	if len(cfg.Kafka.Brokers) > 0 {
		ks, err := kafkastore.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return nil, nil, err
		}
		topicCtx, cancel := context.WithTimeout(ctx, auditTopicTimeout)
		err = ks.EnsureTopic(topicCtx)
		cancel()
		if err != nil {
			ks.Close()
			return nil, nil, err
		}
		store = ks
		closers = append(closers, ks.Close)
	} else if db != nil {
		store = auditpg.New(db)
	} else {
		store = auditmemory.NewInMemoryStore()
	}

	pub := auditpublisher.NewPublisher(store,
		auditpublisher.WithAsyncBuffer(auditBufferSize),
		auditpublisher.WithLogger(log),
	)
	closeAll := func() {
		// Drain before closing the sink.
		pub.Close()
		for _, c := range closers {
			c()
		}
	}
	return pub, closeAll, nil
}
