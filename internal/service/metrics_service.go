package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
)

// MetricsService owns the Prometheus registry of the insights API and keeps
// running totals for the metrics summary endpoint.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	loadDuration    *prometheus.HistogramVec
	scoringDuration *prometheus.HistogramVec
	scoringRequests *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	droppedRecords  *prometheus.CounterVec
	exports         *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	loadCount            uint64
	loadDurationTotal    uint64
	remoteCount          uint64
	remoteFailureCount   uint64
	fallbackCount        uint64
	droppedCount         uint64
}

// NewMetricsService registers the service collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "insights_cache_latency_seconds",
		Help:    "Latency for insight cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "insights_cache_write_seconds",
		Help:    "Latency for insight cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "insights_cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "insights_cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "insights_cache_misses_total",
		Help: "Total cache misses",
	})

	loadDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assessment_load_duration_seconds",
		Help:    "Duration of assessment record loads",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope"})

	scoringDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scoring_request_duration_seconds",
		Help:    "Duration of calls to the scoring service",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"kind"})

	scoringRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scoring_requests_total",
		Help: "Calls to the scoring service by outcome",
	}, []string{"kind", "outcome"})

	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "insights_fallback_total",
		Help: "Insights served by the local engine after a remote failure",
	}, []string{"kind", "reason"})

	droppedRecords := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assessment_records_dropped_total",
		Help: "Malformed assessment records dropped at load time",
	}, []string{"source"})

	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "insights_exports_total",
		Help: "At-risk exports generated",
	}, []string{"format"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		loadDuration, scoringDuration, scoringRequests, fallbacks, droppedRecords, exports, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		loadDuration:    loadDuration,
		scoringDuration: scoringDuration,
		scoringRequests: scoringRequests,
		fallbacks:       fallbacks,
		droppedRecords:  droppedRecords,
		exports:         exports,
	}
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache lookup and updates the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveRecordLoad records how long loading assessment records took.
func (m *MetricsService) ObserveRecordLoad(scope string, duration time.Duration) {
	if m == nil {
		return
	}
	m.loadDuration.WithLabelValues(scope).Observe(duration.Seconds())
	atomic.AddUint64(&m.loadCount, 1)
	atomic.AddUint64(&m.loadDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveScoringCall records one call to the scoring service.
func (m *MetricsService) ObserveScoringCall(kind string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
		atomic.AddUint64(&m.remoteFailureCount, 1)
	}
	m.scoringDuration.WithLabelValues(kind).Observe(duration.Seconds())
	m.scoringRequests.WithLabelValues(kind, outcome).Inc()
	atomic.AddUint64(&m.remoteCount, 1)
}

// RecordFallback counts an insight served locally.
func (m *MetricsService) RecordFallback(kind, reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(kind, reason).Inc()
	atomic.AddUint64(&m.fallbackCount, 1)
}

// RecordsDropped counts malformed records rejected by a repository.
func (m *MetricsService) RecordsDropped(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.droppedRecords.WithLabelValues(source).Add(float64(n))
	atomic.AddUint64(&m.droppedCount, uint64(n))
}

// RecordExport counts a generated export file.
func (m *MetricsService) RecordExport(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// Snapshot returns aggregated metrics for the summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	loads := atomic.LoadUint64(&m.loadCount)
	loadDuration := atomic.LoadUint64(&m.loadDurationTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgLoadMs float64
	if loads > 0 {
		avgLoadMs = float64(loadDuration) / float64(loads) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		RemoteCalls:              atomic.LoadUint64(&m.remoteCount),
		RemoteFailures:           atomic.LoadUint64(&m.remoteFailureCount),
		Fallbacks:                atomic.LoadUint64(&m.fallbackCount),
		DroppedRecords:           atomic.LoadUint64(&m.droppedCount),
		AverageLoadDurationMs:    avgLoadMs,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
