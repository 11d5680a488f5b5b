package ollama

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/teilomillet/ollamanode/config"
)

// NewBreaker builds the optional circuit breaker placed in front of
// /api/generate. Client errors (4xx) are answers, not outages, and do not
// count toward tripping.
//
// The breaker state is exported as ollamanode_circuit_breaker_state
// (0=closed, 1=half-open, 2=open) when registry is non-nil.
func NewBreaker(cfg config.CircuitBreakerConfig, logger *zap.Logger, registry prometheus.Registerer) *gobreaker.CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}

	state := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "ollamanode_circuit_breaker_state",
		Help:        "Current state of the generate circuit breaker (0=closed, 1=half-open, 2=open)",
		ConstLabels: prometheus.Labels{"name": "ollama-generate"},
	})
	if registry != nil {
		registry.MustRegister(state)
	}

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ollama-generate",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			state.Set(float64(to))
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *StatusError
			return errors.As(err, &se) && se.Code < http.StatusInternalServerError
		},
	})
}
