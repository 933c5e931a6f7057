package models

import "time"

// SystemMetrics is a point-in-time view of service instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	RemoteCalls              uint64    `json:"remote_calls"`
	RemoteFailures           uint64    `json:"remote_failures"`
	Fallbacks                uint64    `json:"fallbacks"`
	DroppedRecords           uint64    `json:"dropped_records"`
	AverageLoadDurationMs    float64   `json:"average_load_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
