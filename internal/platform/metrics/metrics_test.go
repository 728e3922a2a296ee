package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecordLabels(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementAuthorization("confirm", "authorized")
	m.IncrementAuthorization("confirm", "authorized")
	m.IncrementTokensIssued("authorization_code")
	m.IncrementTokenGrantFailure("refresh_token", "invalid_grant")
	m.ObserveRPC("scp.get_orders", "ok", 3*time.Millisecond)
	m.AddSwept("auth_codes", 0)
	m.AddSwept("refresh_tokens", 4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthorizationOutcomes.WithLabelValues("confirm", "authorized")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokensIssued.WithLabelValues("authorization_code")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokenGrantFailures.WithLabelValues("refresh_token", "invalid_grant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RPCCalls.WithLabelValues("scp.get_orders", "ok")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.SweptRecords.WithLabelValues("refresh_tokens")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SweptRecords))
}
