package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/ollamanode/config"
	"github.com/teilomillet/ollamanode/server/metrics"
	"github.com/teilomillet/ollamanode/server/middleware"
)

func newRateLimited(m *metrics.Metrics, burst int) http.Handler {
	cfg := config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: burst}
	return middleware.RateLimit(cfg, m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimitMetrics(t *testing.T) {
	m := metrics.NewMetrics()
	handler := newRateLimited(m, 10)
	testIP := "127.0.0.1"

	// Make 11 requests (1 more than the burst)
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest("POST", "/v1/generate", nil)
		req.RemoteAddr = testIP + ":1234"
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if i < 10 {
			assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
			continue
		}

		// Last request should be rate limited
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))

		var body struct {
			Type    string                 `json:"type"`
			Details map[string]interface{} `json:"details"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "rate_limit_error", body.Type)
		assert.Equal(t, float64(1), body.Details["limit"])
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RateLimitHits.WithLabelValues(testIP)))
}

func TestRateLimitPerClient(t *testing.T) {
	handler := newRateLimited(nil, 1)

	do := func(addr string) int {
		req := httptest.NewRequest("POST", "/v1/generate", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:2000"), "port should not matter")
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000"))
}

func TestRateLimitInstancesAreIndependent(t *testing.T) {
	first := newRateLimited(nil, 1)
	second := newRateLimited(nil, 1)

	req := httptest.NewRequest("POST", "/", nil)
	req.RemoteAddr = "10.0.0.3:1"

	rec := httptest.NewRecorder()
	first.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	second.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
