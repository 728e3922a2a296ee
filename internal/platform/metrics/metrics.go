package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	AuthorizationOutcomes *prometheus.CounterVec
	TokensIssued          *prometheus.CounterVec
	TokenGrantFailures    *prometheus.CounterVec
	RPCCalls              *prometheus.CounterVec
	RPCLatency            *prometheus.HistogramVec
	StoreLatency          *prometheus.HistogramVec
	SweptRecords          *prometheus.CounterVec
	HTTPLatency           *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on reg. Pass
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AuthorizationOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scp_gateway_authorization_outcomes_total",
			Help: "Authorization flow steps by step and outcome",
		}, []string{"step", "outcome"}),
		TokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scp_gateway_tokens_issued_total",
			Help: "Access tokens issued by grant type",
		}, []string{"grant_type"}),
		TokenGrantFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scp_gateway_token_grant_failures_total",
			Help: "Rejected token requests by grant type and error code",
		}, []string{"grant_type", "code"}),
		RPCCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scp_gateway_rpc_calls_total",
			Help: "RPC calls by method and outcome",
		}, []string{"method", "outcome"}),
		RPCLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scp_gateway_rpc_duration_seconds",
			Help:    "RPC dispatch latency by method",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		StoreLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scp_gateway_store_duration_seconds",
			Help:    "Store operation latency",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"store", "op"}),
		SweptRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scp_gateway_swept_records_total",
			Help: "Expired durable records removed by housekeeping",
		}, []string{"table"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scp_gateway_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncrementAuthorization(step, outcome string) {
	m.AuthorizationOutcomes.WithLabelValues(step, outcome).Inc()
}

func (m *Metrics) IncrementTokensIssued(grantType string) {
	m.TokensIssued.WithLabelValues(grantType).Inc()
}

func (m *Metrics) IncrementTokenGrantFailure(grantType, code string) {
	m.TokenGrantFailures.WithLabelValues(grantType, code).Inc()
}

func (m *Metrics) ObserveRPC(method, outcome string, elapsed time.Duration) {
	m.RPCCalls.WithLabelValues(method, outcome).Inc()
	m.RPCLatency.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveStore(store, op string, elapsed time.Duration) {
	m.StoreLatency.WithLabelValues(store, op).Observe(elapsed.Seconds())
}

func (m *Metrics) AddSwept(table string, n int) {
	if n > 0 {
		m.SweptRecords.WithLabelValues(table).Add(float64(n))
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPLatency.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
