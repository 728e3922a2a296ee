package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	PublicBaseURL string
	Issuer        string
	SigningSecret string
	LogLevel      string

	HTTP      HTTPConfig
	Auth      Auth
	Redis     RedisConfig
	Postgres  PostgresConfig
	Kafka     KafkaConfig
	Directory DirectoryConfig

	SweepInterval time.Duration
}

// HTTPConfig bounds how long the listener waits on slow clients and handlers.
type HTTPConfig struct {
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RequestTimeout    time.Duration
}

// Auth holds the lifetimes of every artifact minted by the authorization flow.
type Auth struct {
	RequestTTL      time.Duration
	PollInterval    time.Duration
	CodeTTL         time.Duration
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// RedisConfig configures the transient store. An empty URL selects the in-memory store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the durable store. An empty URL selects the in-memory store.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig configures the audit event stream. No brokers disables the sink.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// DirectoryConfig points at the customer directory service. An empty URL
// selects the static fixture directory.
type DirectoryConfig struct {
	URL     string
	Timeout time.Duration

	// Optional client-credentials grant for calls to the directory.
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// Default lifetimes. Authorization requests and magic links share RequestTTL.
const (
	DefaultRequestTTL      = 10 * time.Minute
	DefaultPollInterval    = 2 * time.Second
	DefaultCodeTTL         = 5 * time.Minute
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// DefaultAuth returns the standard artifact lifetimes.
func DefaultAuth() Auth {
	return Auth{
		RequestTTL:      DefaultRequestTTL,
		PollInterval:    DefaultPollInterval,
		CodeTTL:         DefaultCodeTTL,
		AccessTokenTTL:  DefaultAccessTokenTTL,
		RefreshTokenTTL: DefaultRefreshTokenTTL,
	}
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	signingSecret := os.Getenv("SCP_SIGNING_SECRET")
	if signingSecret == "" {
		// Use a default for development - should be overridden in production
		signingSecret = "dev-secret-key-change-in-production"
	}

	addr := envOr("SCP_ADDR", ":8080")
	return Server{
		Addr:          addr,
		PublicBaseURL: strings.TrimRight(envOr("SCP_PUBLIC_BASE_URL", "http://localhost"+addr), "/"),
		Issuer:        envOr("SCP_ISSUER", "scp-gateway"),
		SigningSecret: signingSecret,
		LogLevel:      envOr("SCP_LOG_LEVEL", "info"),
		HTTP: HTTPConfig{
			ReadHeaderTimeout: envDuration("SCP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       envDuration("SCP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:      envDuration("SCP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       envDuration("SCP_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout:    envDuration("SCP_REQUEST_TIMEOUT", 20*time.Second),
		},
		Auth: DefaultAuth(),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: envOr("KAFKA_AUDIT_TOPIC", "scp.audit"),
		},
		Directory: DirectoryConfig{
			URL:          os.Getenv("DIRECTORY_URL"),
			Timeout:      envDuration("DIRECTORY_TIMEOUT", 5*time.Second),
			ClientID:     os.Getenv("DIRECTORY_CLIENT_ID"),
			ClientSecret: os.Getenv("DIRECTORY_CLIENT_SECRET"),
			TokenURL:     os.Getenv("DIRECTORY_TOKEN_URL"),
		},
		SweepInterval: envDuration("SWEEP_INTERVAL", 10*time.Minute),
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
