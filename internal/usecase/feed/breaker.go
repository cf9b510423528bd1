package feed

import (
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchfeed/internal/domain/feed"
	"github.com/kailas-cloud/matchfeed/internal/metrics"
)

// BreakerConfig configures the pool-tier circuit breaker.
type BreakerConfig struct {
	MaxRequests      uint32        // probes allowed while half-open
	Interval         time.Duration // closed-state counter reset period
	Timeout          time.Duration // open-state duration before probing
	FailureThreshold uint32        // consecutive failures that open the circuit
}

// NewPoolBreaker creates the breaker guarding pool reads.
func NewPoolBreaker(cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker[[]feed.Candidate] {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "pool",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return gobreaker.NewCircuitBreaker[[]feed.Candidate](settings)
}
