package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/eapache/queue/v2"

	"github.com/teilomillet/ollamanode/config"
	"github.com/teilomillet/ollamanode/errors"
	"github.com/teilomillet/ollamanode/server/metrics"
)

// ticket is one waiting request. ready is closed when the request is handed
// a worker slot.
type ticket struct {
	ready     chan struct{}
	granted   bool
	abandoned bool
}

// GenerationQueue admits generate requests to Ollama in arrival order.
// At most Workers requests run at once; up to MaxSize more wait in a FIFO
// queue and the rest are rejected with 503.
//
// A request whose client goes away while waiting is marked abandoned and
// skipped when its turn comes, so a dropped connection never holds a slot.
type GenerationQueue struct {
	mu      sync.Mutex
	waiting *queue.Queue[*ticket]
	pending int // waiting tickets that are not abandoned
	active  int
	workers int
	maxSize int
	metrics *metrics.Metrics
}

// NewGenerationQueue creates a queue from cfg. m may be nil.
func NewGenerationQueue(cfg config.QueueConfig, m *metrics.Metrics) *GenerationQueue {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &GenerationQueue{
		waiting: queue.New[*ticket](),
		workers: workers,
		maxSize: cfg.MaxSize,
		metrics: m,
	}
}

// Waiting returns the number of requests waiting for a worker.
func (q *GenerationQueue) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Active returns the number of requests holding a worker.
func (q *GenerationQueue) Active() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

// acquire returns a ticket to wait on, or nil when a worker was free and the
// caller may run immediately. ok is false when the queue is full.
func (q *GenerationQueue) acquire() (t *ticket, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.active < q.workers && q.pending == 0 {
		q.active++
		return nil, true
	}
	if q.pending >= q.maxSize {
		return nil, false
	}

	t = &ticket{ready: make(chan struct{})}
	q.waiting.Add(t)
	q.pending++
	q.setWaiting()
	return t, true
}

// release hands the caller's worker slot to the next live ticket, or frees
// it when nobody is waiting.
func (q *GenerationQueue) release() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.waiting.Length() > 0 {
		t := q.waiting.Remove()
		if t.abandoned {
			continue
		}
		q.pending--
		q.setWaiting()
		t.granted = true
		close(t.ready)
		return
	}
	q.active--
}

// abandon gives up on t. It reports false when t was granted a slot in the
// meantime, in which case the caller owns that slot.
func (q *GenerationQueue) abandon(t *ticket) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t.granted {
		return false
	}
	t.abandoned = true
	q.pending--
	q.setWaiting()
	return true
}

func (q *GenerationQueue) setWaiting() {
	if q.metrics != nil {
		q.metrics.QueueWaiting.Set(float64(q.pending))
	}
}

// Handler wraps next with the queue.
func (q *GenerationQueue) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		t, ok := q.acquire()
		if !ok {
			if q.metrics != nil {
				q.metrics.ErrorsTotal.WithLabelValues("queue_full").Inc()
			}
			errors.WriteError(w, errors.NewQueueFullError(GetRequestID(r.Context()), q.maxSize))
			return
		}

		if t != nil {
			select {
			case <-t.ready:
			case <-r.Context().Done():
				if q.abandon(t) {
					return
				}
			}
		}
		defer q.release()

		if q.metrics != nil {
			q.metrics.QueueWaitDuration.Observe(time.Since(start).Seconds())
		}

		next.ServeHTTP(w, r)
	})
}
