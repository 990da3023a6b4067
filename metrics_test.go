package sageauth

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricLoginSuccess)
	m.Observe(MetricLoginLatency, 10*time.Millisecond)

	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0 on disabled metrics, got %d", got)
	}
	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestMetricsNilReceiverSafe(t *testing.T) {
	var m *Metrics

	m.Inc(MetricLoginSuccess)
	m.Observe(MetricLoginLatency, time.Millisecond)
	if m.Value(MetricLoginSuccess) != 0 {
		t.Fatal("expected 0 from nil metrics")
	}
	if m.Enabled() || m.LatencyEnabled() {
		t.Fatal("expected nil metrics disabled")
	}
}

func TestMetricsCountersIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLogout)

	if got := m.Value(MetricLoginSuccess); got != 2 {
		t.Fatalf("expected login_success 2, got %d", got)
	}
	if got := m.Value(MetricLogout); got != 1 {
		t.Fatalf("expected logout 1, got %d", got)
	}
	if got := m.Value(MetricLoginFailure); got != 0 {
		t.Fatalf("expected login_failure 0, got %d", got)
	}
}

func TestMetricsLatencyRequiresHistogramOptIn(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Observe(MetricLoginLatency, 10*time.Millisecond)
	if snap := m.Snapshot(); len(snap.Histograms) != 0 {
		t.Fatalf("expected no histogram without opt-in, got %+v", snap.Histograms)
	}
}

func TestMetricsLatencyBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	cases := []struct {
		d      time.Duration
		bucket int
	}{
		{time.Millisecond, 0},
		{5 * time.Millisecond, 0},
		{6 * time.Millisecond, 1},
		{25 * time.Millisecond, 2},
		{40 * time.Millisecond, 3},
		{99 * time.Millisecond, 4},
		{200 * time.Millisecond, 5},
		{500 * time.Millisecond, 6},
		{2 * time.Second, 7},
	}

	for _, tc := range cases {
		m.Observe(MetricLoginLatency, tc.d)
	}

	buckets := m.Snapshot().Histograms[MetricLoginLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("expected %d buckets, got %d", histBucketCount, len(buckets))
	}

	want := make([]uint64, histBucketCount)
	for _, tc := range cases {
		want[tc.bucket]++
	}
	for i := range want {
		if buckets[i] != want[i] {
			t.Fatalf("bucket %d: expected %d, got %d (all: %v)", i, want[i], buckets[i], buckets)
		}
	}
}

func TestMetricsSnapshotIsDeepCopy(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricLoginLatency, time.Millisecond)

	snap := m.Snapshot()
	snap.Counters[MetricLoginSuccess] = 999
	snap.Histograms[MetricLoginLatency][0] = 999

	fresh := m.Snapshot()
	if fresh.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("expected snapshot isolation, got %d", fresh.Counters[MetricLoginSuccess])
	}
	if fresh.Histograms[MetricLoginLatency][0] != 1 {
		t.Fatalf("expected histogram isolation, got %d", fresh.Histograms[MetricLoginLatency][0])
	}
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricLoginSuccess)
				m.Observe(MetricLoginLatency, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricLoginSuccess); got != workers*perWorker {
		t.Fatalf("expected %d, got %d", workers*perWorker, got)
	}
	if got := m.Snapshot().Histograms[MetricLoginLatency][0]; got != workers*perWorker {
		t.Fatalf("expected %d observations in first bucket, got %d", workers*perWorker, got)
	}
}

func BenchmarkMetricsInc(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Inc(MetricLoginSuccess)
	}
}
