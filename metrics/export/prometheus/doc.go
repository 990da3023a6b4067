// Package prometheus provides Prometheus collectors for sageauth metrics.
//
// [NewPrometheusExporter] accepts a [sageauth.Resolver] and exposes an [http.Handler]
// that renders all sageauth counters and histograms in Prometheus text exposition
// format. Counter names are prefixed sageflow_*_total; the single histogram is
// sageflow_login_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate resolver state.
package prometheus
