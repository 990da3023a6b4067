package internaldefs

import (
	sageauth "github.com/sageflow/sageauth"
)

// CounterDef binds a metric id to its exported name and help text.
type CounterDef struct {
	ID   sageauth.MetricID
	Name string
	Help string
}

// HistogramDef binds a histogram-backed metric id to its exported name
// and help text.
type HistogramDef struct {
	ID   sageauth.MetricID
	Name string
	Help string
}

// CounterDefs is the stable export order for all session counters.
var CounterDefs = []CounterDef{
	{ID: sageauth.MetricLoginSuccess, Name: "sageflow_login_success_total", Help: "Logins accepted by the backend."},
	{ID: sageauth.MetricLoginFailure, Name: "sageflow_login_failure_total", Help: "Logins rejected or failed."},
	{ID: sageauth.MetricLoginIdentityUnresolved, Name: "sageflow_login_identity_unresolved_total", Help: "Accepted logins whose identity resolved from no source."},
	{ID: sageauth.MetricRestoreNoSession, Name: "sageflow_restore_no_session_total", Help: "Startups with no stored token."},
	{ID: sageauth.MetricRestorePersisted, Name: "sageflow_restore_persisted_total", Help: "Startups restored from the persisted user record."},
	{ID: sageauth.MetricRestoreFromToken, Name: "sageflow_restore_from_token_total", Help: "Startups reconstructed from token claims alone."},
	{ID: sageauth.MetricRestoreMalformed, Name: "sageflow_restore_cleared_malformed_total", Help: "Startups that cleared an undecodable token."},
	{ID: sageauth.MetricRestoreExpired, Name: "sageflow_restore_cleared_expired_total", Help: "Startups that cleared an expired token."},
	{ID: sageauth.MetricRestoreUnresolved, Name: "sageflow_restore_cleared_unresolved_total", Help: "Startups that cleared an identity-less token."},
	{ID: sageauth.MetricLogout, Name: "sageflow_logout_total", Help: "Logout operations."},
	{ID: sageauth.MetricLogoutRemoteFailure, Name: "sageflow_logout_remote_failure_total", Help: "Logouts whose remote call failed."},
	{ID: sageauth.MetricUserUpdated, Name: "sageflow_user_updated_total", Help: "Applied user patches."},
	{ID: sageauth.MetricStorageFault, Name: "sageflow_storage_fault_total", Help: "Durable-storage read/write failures."},
}

// HistogramDefs lists the histogram-backed metrics.
var HistogramDefs = []HistogramDef{
	{ID: sageauth.MetricLoginLatency, Name: "sageflow_login_latency_seconds", Help: "Login round-trip latency histogram."},
}

// HistogramBounds are the Prometheus le labels matching the core buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are the bound labels normalized for instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
