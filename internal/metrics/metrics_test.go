package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/daleel/internal/guard"
)

func TestObserveDecision(t *testing.T) {
	m := New()
	policy := guard.Default()

	del := guard.MutationRequest{Kind: guard.KindStatement, Operation: guard.OpDelete}
	m.ObserveDecision(del, policy.Evaluate(del))
	m.ObserveDecision(del, policy.Evaluate(del))

	upd := guard.MutationRequest{Kind: guard.KindSource, Operation: guard.OpUpdate, Fields: guard.NewFieldSet("notes")}
	m.ObserveDecision(upd, policy.Evaluate(upd))

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.GuardDecisions.WithLabelValues("Statement", "delete", "DELETE_OF_IMMUTABLE_RECORD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.GuardDecisions.WithLabelValues("Source", "update", "allow")))
}

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/api/public/cycles", 200, 5*time.Millisecond)
	m.ObserveRequest("GET", "", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/public/cycles", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPDuration))
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.RateLimited.WithLabelValues("auth").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `daleel_rate_limited_total{limiter="auth"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
