package percept

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordCompute is called after each fingerprint computation.
	// waited is the time spent suspended on admission, total the end-to-end
	// time; err is nil if successful.
	RecordCompute(waited, total time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCompute(time.Duration, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ComputeCount       atomic.Int64
	ComputeErrors      atomic.Int64
	ComputeTotalNanos  atomic.Int64
	AdmissionWaitNanos atomic.Int64
}

// RecordCompute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompute(waited, total time.Duration, err error) {
	b.ComputeCount.Add(1)
	b.ComputeTotalNanos.Add(total.Nanoseconds())
	b.AdmissionWaitNanos.Add(waited.Nanoseconds())
	if err != nil {
		b.ComputeErrors.Add(1)
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ComputeCount      int64
	ComputeErrors     int64
	ComputeAvgNanos   int64
	AdmissionAvgNanos int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	count := b.ComputeCount.Load()
	stats := BasicMetricsStats{
		ComputeCount:  count,
		ComputeErrors: b.ComputeErrors.Load(),
	}
	if count > 0 {
		stats.ComputeAvgNanos = b.ComputeTotalNanos.Load() / count
		stats.AdmissionAvgNanos = b.AdmissionWaitNanos.Load() / count
	}
	return stats
}
