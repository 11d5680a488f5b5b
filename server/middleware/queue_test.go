package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/ollamanode/config"
	"github.com/teilomillet/ollamanode/server/metrics"
)

// blockingHandler records the order requests start in and holds each one
// until release is closed.
type blockingHandler struct {
	mu      sync.Mutex
	order   []string
	started chan struct{}
	release chan struct{}
}

func newBlockingHandler() *blockingHandler {
	return &blockingHandler{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (h *blockingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.order = append(h.order, r.Header.Get("X-Name"))
	h.mu.Unlock()
	h.started <- struct{}{}
	<-h.release
	w.WriteHeader(http.StatusOK)
}

func (h *blockingHandler) startOrder() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.order...)
}

func serveNamed(ctx context.Context, handler http.Handler, name string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/v1/generate", nil).WithContext(ctx)
	req.Header.Set("X-Name", name)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestGenerationQueue(t *testing.T) {
	t.Run("passes through when a worker is free", func(t *testing.T) {
		m := metrics.NewMetrics()
		q := NewGenerationQueue(config.QueueConfig{Enabled: true, Workers: 1, MaxSize: 2}, m)

		handler := q.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rec := serveNamed(context.Background(), handler, "a")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, q.Active())
		assert.Equal(t, 0, q.Waiting())
		assert.Equal(t, float64(0), testutil.ToFloat64(m.QueueWaiting))
	})

	t.Run("runs waiting requests in arrival order", func(t *testing.T) {
		inner := newBlockingHandler()
		q := NewGenerationQueue(config.QueueConfig{Enabled: true, Workers: 1, MaxSize: 5}, nil)
		handler := q.Handler(inner)

		var wg sync.WaitGroup
		names := []string{"first", "second", "third"}
		for i, name := range names {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				serveNamed(context.Background(), handler, name)
			}(name)

			// Wait until this request is running or queued before sending the next.
			want := i
			waitFor(t, func() bool { return q.Active()+q.Waiting() == want+1 })
		}

		<-inner.started
		assert.Equal(t, 1, q.Active())
		assert.Equal(t, 2, q.Waiting())

		close(inner.release)
		wg.Wait()

		assert.Equal(t, names, inner.startOrder())
		assert.Equal(t, 0, q.Active())
	})

	t.Run("rejects when full", func(t *testing.T) {
		m := metrics.NewMetrics()
		inner := newBlockingHandler()
		q := NewGenerationQueue(config.QueueConfig{Enabled: true, Workers: 1, MaxSize: 1}, m)
		handler := q.Handler(inner)

		var wg sync.WaitGroup
		for i, name := range []string{"running", "waiting"} {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				serveNamed(context.Background(), handler, name)
			}(name)
			want := i + 1
			waitFor(t, func() bool { return q.Active()+q.Waiting() == want })
		}

		rec := serveNamed(context.Background(), handler, "rejected")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "queue_full")
		assert.Equal(t, float64(1), testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("queue_full")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.QueueWaiting))

		close(inner.release)
		wg.Wait()
		assert.NotContains(t, inner.startOrder(), "rejected")
	})

	t.Run("abandoned requests give up their place", func(t *testing.T) {
		inner := newBlockingHandler()
		q := NewGenerationQueue(config.QueueConfig{Enabled: true, Workers: 1, MaxSize: 5}, nil)
		handler := q.Handler(inner)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveNamed(context.Background(), handler, "running")
		}()
		<-inner.started

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			serveNamed(ctx, handler, "gone")
		}()
		waitFor(t, func() bool { return q.Waiting() == 1 })

		cancel()
		<-done
		assert.Equal(t, 0, q.Waiting())

		wg.Add(1)
		go func() {
			defer wg.Done()
			serveNamed(context.Background(), handler, "next")
		}()
		waitFor(t, func() bool { return q.Waiting() == 1 })

		close(inner.release)
		wg.Wait()

		assert.Equal(t, []string{"running", "next"}, inner.startOrder())
		assert.Equal(t, 0, q.Active())
	})
}
