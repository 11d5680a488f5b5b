package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/teilomillet/ollamanode/server/metrics"
	"github.com/teilomillet/ollamanode/server/middleware"
)

func TestPrometheusMetrics(t *testing.T) {
	tests := []struct {
		name           string
		handler        http.HandlerFunc
		expectedPath   string
		expectedStatus string
		errorType      string
	}{
		{
			name: "success request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			expectedPath:   "/",
			expectedStatus: "200",
		},
		{
			name: "implicit status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("ok"))
			},
			expectedPath:   "/",
			expectedStatus: "200",
		},
		{
			name: "client error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			expectedPath:   "/",
			expectedStatus: "400",
			errorType:      "client_error",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			expectedPath:   "/",
			expectedStatus: "502",
			errorType:      "server_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.NewMetrics()
			handler := middleware.PrometheusMetrics(m)(tt.handler)

			req := httptest.NewRequest("GET", "/", nil)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			count := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(tt.expectedPath, tt.expectedStatus))
			assert.Equal(t, float64(1), count)

			if tt.errorType != "" {
				assert.Equal(t, float64(1), testutil.ToFloat64(m.ErrorsTotal.WithLabelValues(tt.errorType)))
			}
			assert.Equal(t, float64(0), testutil.ToFloat64(m.ActiveRequests.WithLabelValues("GET")))
		})
	}
}

func TestPrometheusMetricsRoutePattern(t *testing.T) {
	m := metrics.NewMetrics()

	r := chi.NewRouter()
	r.Use(middleware.PrometheusMetrics(m))
	r.Get("/v1/models/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/v1/models/llava", "/v1/models/mistral"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nope/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nope/2", nil))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/v1/models/{name}", "200")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("unmatched", "404")))
}

func TestMetricsHandler(t *testing.T) {
	m := metrics.NewMetrics()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ollamanode_http_requests_total")
	assert.Contains(t, rec.Body.String(), "ollamanode_generations_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
