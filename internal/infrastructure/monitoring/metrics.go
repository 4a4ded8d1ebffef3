package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for browser activity
type Metrics struct {
	// Fetch metrics, one observation per HTTP round trip
	FetchesTotal  *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	ResponseSize  *prometheus.HistogramVec
	FetchErrors   *prometheus.CounterVec

	// Navigation metrics, one observation per load_page dispatch
	DispatchesTotal *prometheus.CounterVec

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for quick summaries without scraping
type Snapshot struct {
	TotalFetches  int64
	TotalErrors   int64
	TotalDispatch int64
	TotalDuration float64 // sum of all fetch durations in seconds
	ResponseBytes int64
}

// AverageDuration returns the mean fetch duration
func (s Snapshot) AverageDuration() time.Duration {
	if s.TotalFetches == 0 {
		return 0
	}
	return time.Duration(s.TotalDuration / float64(s.TotalFetches) * float64(time.Second))
}

// NewMetrics registers the collectors with reg. Each browser that installs
// metrics needs its own registry or its own Metrics value.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatorbrowse_fetches_total",
				Help: "Total number of HTTP round trips",
			},
			[]string{"method", "host", "status"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gatorbrowse_fetch_duration_seconds",
				Help:    "HTTP round trip duration in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "host"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gatorbrowse_response_size_bytes",
				Help:    "Announced response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"host"},
		),
		FetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatorbrowse_fetch_errors_total",
				Help: "Total number of HTTP round trips that failed without a response",
			},
			[]string{"host"},
		),
		DispatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatorbrowse_dispatches_total",
				Help: "Total number of page loads, including redirect hops",
			},
			[]string{"outcome"},
		),
	}
}

// RecordFetch records one completed round trip
func (m *Metrics) RecordFetch(method, host string, status int, duration time.Duration, size int64) {
	m.FetchesTotal.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	m.FetchDuration.WithLabelValues(method, host).Observe(duration.Seconds())
	if size >= 0 {
		m.ResponseSize.WithLabelValues(host).Observe(float64(size))
	}

	m.mu.Lock()
	m.snapshot.TotalFetches++
	m.snapshot.TotalDuration += duration.Seconds()
	if size > 0 {
		m.snapshot.ResponseBytes += size
	}
	m.mu.Unlock()
}

// RecordFetchError records a round trip that produced no response
func (m *Metrics) RecordFetchError(method, host string, duration time.Duration) {
	m.FetchErrors.WithLabelValues(host).Inc()
	m.FetchDuration.WithLabelValues(method, host).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalErrors++
	m.mu.Unlock()
}

// RecordDispatch records the outcome of one page load
func (m *Metrics) RecordDispatch(outcome string) {
	m.DispatchesTotal.WithLabelValues(outcome).Inc()

	m.mu.Lock()
	m.snapshot.TotalDispatch++
	m.mu.Unlock()
}

// Snapshot returns the running totals
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
