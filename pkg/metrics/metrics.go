// Package metrics keeps the progress counters of a run and pushes them when it ends.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Manager holds the counters of the leaderboard aggregation.
// Each manager has its own registry, the default one is never touched.
type Manager struct {
	registry *prometheus.Registry

	pagesAttempted prometheus.Counter
	pagesFetched   prometheus.Counter
	retries        *prometheus.CounterVec
	entriesMerged  prometheus.Counter
	fetchLatency   prometheus.Histogram
	lastRunSuccess prometheus.Gauge
}

// NewManager creates the counters on a new registry.
func NewManager(namespace string) *Manager {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	return &Manager{
		registry: registry,
		pagesAttempted: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "pages_attempted_total",
			Help:      "Total number of ladder page requests, retries included",
		}),
		pagesFetched: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "pages_fetched_total",
			Help:      "Total number of ladder pages successfully fetched",
		}),
		retries: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "retries_total",
			Help:      "Total number of page retries by reason",
		}, []string{"reason"}),
		entriesMerged: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "entries_merged_total",
			Help:      "Total number of ladder entries merged into the top N",
		}),
		fetchLatency: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "page_fetch_seconds",
			Help:      "Latency of a single ladder page request",
			Buckets:   prometheus.DefBuckets,
		}),
		lastRunSuccess: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "last_run_success",
			Help:      "1 when the last aggregation finished without error",
		}),
	}
}

// PageAttempted records a page request and how long it took.
func (m *Manager) PageAttempted(took time.Duration) {
	m.pagesAttempted.Inc()
	m.fetchLatency.Observe(took.Seconds())
}

// PageFetched records a page that was merged or that ended the ladder.
func (m *Manager) PageFetched() {
	m.pagesFetched.Inc()
}

// Retry records a retry of the same page.
func (m *Manager) Retry(reason string) {
	m.retries.WithLabelValues(reason).Inc()
}

// EntriesMerged records how many entries a page added to the merge.
func (m *Manager) EntriesMerged(count int) {
	m.entriesMerged.Add(float64(count))
}

// RunFinished sets the outcome of the run.
func (m *Manager) RunFinished(err error) {
	if err != nil {
		m.lastRunSuccess.Set(0)
		return
	}
	m.lastRunSuccess.Set(1)
}

// Registry returns the registry holding the counters.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Push sends every counter to a pushgateway, since the tools exit before any scrape.
func (m *Manager) Push(ctx context.Context, url string, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("couldn't push the metrics to %s: %w", url, err)
	}
	return nil
}
