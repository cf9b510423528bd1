package metrics

import "github.com/prometheus/client_golang/prometheus"

// Feed and pool Prometheus metrics.
var (
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchfeed",
			Name:      "cache_lookups_total",
			Help:      "Read cache hits and misses",
		},
		[]string{"kind", "result"}, // kind: page/snapshot/score; result: hit/miss
	)

	CandidatesServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchfeed",
			Name:      "candidates_served_total",
			Help:      "Candidates placed into view snapshots by source tier",
		},
		[]string{"view", "source"},
	)

	FeedBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchfeed",
			Name:      "feed_batches_total",
			Help:      "Swipe feed reads by status",
		},
		[]string{"status"},
	)

	PoolRebuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "matchfeed",
			Name:      "pool_rebuild_duration_seconds",
			Help:      "Ranking pool rebuild duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	PoolSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "matchfeed",
			Name:      "pool_size",
			Help:      "Entries stored per ranking pool rebuild",
			Buckets:   []float64{0, 10, 25, 50, 100, 150, 200, 300, 500},
		},
	)

	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchfeed",
			Name:      "jobs_total",
			Help:      "Background job executions by type and outcome",
		},
		[]string{"type", "outcome"}, // outcome: ok/error
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "matchfeed",
			Name:      "breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

var feedMetricsRegistered bool

// RegisterFeedMetrics registers feed, pool and job metrics. Must be called once from main.
func RegisterFeedMetrics() {
	if feedMetricsRegistered {
		return
	}
	prometheus.MustRegister(CacheLookupsTotal)
	prometheus.MustRegister(CandidatesServedTotal)
	prometheus.MustRegister(FeedBatchesTotal)
	prometheus.MustRegister(PoolRebuildDuration)
	prometheus.MustRegister(PoolSize)
	prometheus.MustRegister(JobsTotal)
	prometheus.MustRegister(BreakerState)
	feedMetricsRegistered = true
}
