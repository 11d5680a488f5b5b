package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/teilomillet/ollamanode/config"
	"github.com/teilomillet/ollamanode/errors"
	"github.com/teilomillet/ollamanode/server/metrics"
)

// rateLimiters holds one token bucket per client IP.
type rateLimiters struct {
	visitors map[string]*rate.Limiter
	mu       sync.Mutex
}

func (l *rateLimiters) GetOrCreate(ip string, create func() *rate.Limiter) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.visitors[ip]
	if !exists {
		limiter = create()
		l.visitors[ip] = limiter
	}

	return limiter
}

// clientIP strips the port from RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit middleware implements rate limiting per IP address. Each
// client gets RequestsPerMinute tokens per minute with a bucket of Burst.
// m may be nil.
func RateLimit(cfg config.RateLimitConfig, m *metrics.Metrics) func(http.Handler) http.Handler {
	limiters := &rateLimiters{visitors: make(map[string]*rate.Limiter)}
	every := rate.Limit(float64(cfg.RequestsPerMinute) / 60)
	retryAfter := int(math.Ceil(float64(time.Minute) / float64(cfg.RequestsPerMinute) / float64(time.Second)))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			limiter := limiters.GetOrCreate(ip, func() *rate.Limiter {
				return rate.NewLimiter(every, cfg.Burst)
			})

			if !limiter.Allow() {
				if m != nil {
					m.RateLimitHits.WithLabelValues(ip).Inc()
				}

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				errResp := errors.NewRateLimitError(GetRequestID(r.Context()), retryAfter)
				errResp.Details["limit"] = cfg.RequestsPerMinute
				errResp.Details["window"] = time.Minute.String()

				errors.WriteError(w, errResp)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
