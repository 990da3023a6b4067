// Package otel provides OpenTelemetry metric exporter bindings for sageauth
// counters and histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each sageauth
// metric and Int64ObservableGauge per histogram bucket. A single callback reads
// [sageauth.Resolver.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate resolver state.
package otel
