package sageauth

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID uint16

const (
	// MetricLoginSuccess counts remote logins accepted by the backend.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts remote logins rejected or failed.
	MetricLoginFailure
	// MetricLoginIdentityUnresolved counts accepted logins whose identity
	// could not be resolved from any source (degraded sessions).
	MetricLoginIdentityUnresolved
	// MetricRestoreNoSession counts startups with no stored token.
	MetricRestoreNoSession
	// MetricRestorePersisted counts startups restored from the persisted user record.
	MetricRestorePersisted
	// MetricRestoreFromToken counts startups reconstructed from token claims alone.
	MetricRestoreFromToken
	// MetricRestoreMalformed counts startups that cleared an undecodable token.
	MetricRestoreMalformed
	// MetricRestoreExpired counts startups that cleared an expired token.
	MetricRestoreExpired
	// MetricRestoreUnresolved counts startups that cleared an identity-less token.
	MetricRestoreUnresolved
	// MetricLogout counts logout operations.
	MetricLogout
	// MetricLogoutRemoteFailure counts logouts whose remote call failed
	// (local state is cleared regardless).
	MetricLogoutRemoteFailure
	// MetricUserUpdated counts applied user patches.
	MetricUserUpdated
	// MetricStorageFault counts durable-storage read/write failures.
	MetricStorageFault
	// MetricLoginLatency is the login round-trip latency histogram.
	MetricLoginLatency

	metricIDCount
)

const histBucketCount = 8

// paddedCounter keeps each counter on its own cache line to avoid false
// sharing between hot counters.
type paddedCounter struct {
	value uint64
	_     [56]byte
}

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// Metrics holds atomic counters and an optional login-latency histogram.
//
// Metrics instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether the metrics system records anything at all.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram records observations.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments the counter identified by id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency observation for the login histogram. Only
// [MetricLoginLatency] is histogram-backed; other ids are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricLoginLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters and histogram buckets.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricLoginLatency].buckets[i])
		}
		s.Histograms[MetricLoginLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
