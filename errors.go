package userflow

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine is used before its
	// internal components were assembled. Only possible for engines built
	// by hand; [Builder.Build] never produces one.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrCapabilityNotConfigured marks a flow reaching a capability slot the
	// host never assigned. A deployment problem, distinct from any ordinary
	// outcome such as "no such user".
	ErrCapabilityNotConfigured = errors.New("capability not configured")
	// ErrSigningKeyMissing is returned by Build when no reset token signing
	// key was supplied.
	ErrSigningKeyMissing = errors.New("reset token signing key not configured")
	// ErrBackendUnavailable wraps faults returned by host callbacks.
	ErrBackendUnavailable = errors.New("host backend unavailable")
	// ErrPasswordPolicy is returned when a new password fails the configured
	// hashing policy (currently the minimum length).
	ErrPasswordPolicy = errors.New("password policy violation")
)
