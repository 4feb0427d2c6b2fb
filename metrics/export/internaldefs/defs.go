// Package internaldefs holds the shared metric name and help-text
// definitions used by the exporter bridges. Not intended for direct use.
package internaldefs

import (
	userflow "github.com/userflow-go/userflow"
)

// CounterDef maps one engine counter to its exported name.
type CounterDef struct {
	ID   userflow.MetricID
	Name string
	Help string
}

// HistogramDef maps one engine histogram to its exported name.
type HistogramDef struct {
	ID   userflow.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: userflow.MetricLoginSuccess, Name: "userflow_login_success_total", Help: "Successful login attempts."},
	{ID: userflow.MetricLoginUnknownUser, Name: "userflow_login_unknown_user_total", Help: "Login attempts for identifiers that resolved no user."},
	{ID: userflow.MetricLoginBadPassword, Name: "userflow_login_bad_password_total", Help: "Login attempts that failed password verification."},
	{ID: userflow.MetricLoginUnverified, Name: "userflow_login_unverified_total", Help: "Login attempts blocked on verification state."},
	{ID: userflow.MetricCredentialUpgrade, Name: "userflow_credential_upgrade_total", Help: "Stored hashes rehashed to stronger parameters on login."},
	{ID: userflow.MetricRegistrationSuccess, Name: "userflow_registration_success_total", Help: "Successful registrations."},
	{ID: userflow.MetricRegistrationDuplicate, Name: "userflow_registration_duplicate_total", Help: "Registrations rejected for an existing username or email."},
	{ID: userflow.MetricRegistrationFailure, Name: "userflow_registration_failure_total", Help: "Registrations rejected by the host inserter."},
	{ID: userflow.MetricResetRequest, Name: "userflow_reset_request_total", Help: "Password reset requests for known identifiers."},
	{ID: userflow.MetricResetRequestUnknown, Name: "userflow_reset_request_unknown_total", Help: "Password reset requests for unknown identifiers."},
	{ID: userflow.MetricResetRedeemSuccess, Name: "userflow_reset_redeem_success_total", Help: "Reset tokens redeemed successfully."},
	{ID: userflow.MetricResetRedeemInvalid, Name: "userflow_reset_redeem_invalid_total", Help: "Reset redemptions rejected as invalid, expired, or unresolvable."},
	{ID: userflow.MetricResetReplayBlocked, Name: "userflow_reset_replay_blocked_total", Help: "Reset redemptions blocked by the consumed-token store."},
	{ID: userflow.MetricResetCompleteSuccess, Name: "userflow_reset_complete_success_total", Help: "Password reset completions that persisted a new hash."},
	{ID: userflow.MetricResetCompleteFailure, Name: "userflow_reset_complete_failure_total", Help: "Password reset completions rejected by policy or the host."},
}

var HistogramDefs = []HistogramDef{
	{ID: userflow.MetricLoginLatency, Name: "userflow_login_latency_seconds", Help: "Login latency histogram."},
}

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

// CumulativeBuckets converts per-bucket counts into cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
