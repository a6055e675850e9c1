package models

import "time"

// SystemMetrics is a lightweight aggregate surfaced on the readiness check.
type SystemMetrics struct {
	SnapshotHitRatio         float64   `json:"snapshot_hit_ratio"`
	SnapshotHits             uint64    `json:"snapshot_hits"`
	SnapshotMisses           uint64    `json:"snapshot_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	PersistOK                uint64    `json:"persist_ok"`
	PersistFailed            uint64    `json:"persist_failed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
