package internaldefs

import (
	"github.com/MrEthical07/sessionauth"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   sessionauth.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for exporters.
type HistogramDef struct {
	ID   sessionauth.MetricID
	Name string
	Help string
}

const (
	// AuditDroppedName is exported alongside the engine counters.
	AuditDroppedName = "sessionauth_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."
)

var CounterDefs = []CounterDef{
	{ID: sessionauth.MetricLoginSuccess, Name: "sessionauth_login_success_total", Help: "Successful logins."},
	{ID: sessionauth.MetricLoginFailure, Name: "sessionauth_login_failure_total", Help: "Failed logins."},
	{ID: sessionauth.MetricRefreshSuccess, Name: "sessionauth_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: sessionauth.MetricRefreshRejected, Name: "sessionauth_refresh_rejected_total", Help: "Refresh requests rejected by the refresh gate."},
	{ID: sessionauth.MetricRefreshRaceLost, Name: "sessionauth_refresh_race_lost_total", Help: "Refreshes that lost a concurrent rotation."},
	{ID: sessionauth.MetricLogout, Name: "sessionauth_logout_total", Help: "Logouts."},
	{ID: sessionauth.MetricRegisterSuccess, Name: "sessionauth_register_success_total", Help: "Successful registrations."},
	{ID: sessionauth.MetricRegisterDuplicate, Name: "sessionauth_register_duplicate_total", Help: "Registrations rejected as duplicate."},
	{ID: sessionauth.MetricAuthAuthenticated, Name: "sessionauth_auth_authenticated_total", Help: "Requests classified as authenticated."},
	{ID: sessionauth.MetricAuthUnauthenticated, Name: "sessionauth_auth_unauthenticated_total", Help: "Requests without a bearer token."},
	{ID: sessionauth.MetricAuthRejected, Name: "sessionauth_auth_rejected_total", Help: "Requests whose bearer token was rejected."},
}

var HistogramDefs = []HistogramDef{
	{ID: sessionauth.MetricVerifyLatency, Name: "sessionauth_verify_latency_seconds", Help: "Bearer token verification latency."},
}

// HistogramBounds are the finite upper bounds in seconds; the eighth bucket is +Inf.
var HistogramBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters without native histograms.
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

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
