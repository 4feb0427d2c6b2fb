package userflow

import (
	"errors"
	"time"
)

// Config collects the engine's tunables. Configure once through the
// [Builder] before traffic begins; the engine treats it as read-only
// afterwards.
type Config struct {
	Password     PasswordConfig
	Reset        ResetConfig
	Verification VerificationConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

// PasswordConfig holds the argon2id cost parameters (Memory in KB) and the
// minimum accepted password length. With UpgradeOnLogin set, a successful
// login against a hash with weaker parameters rehashes the password and
// persists the new hash through the set-credential capability.
type PasswordConfig struct {
	Memory         uint32
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	MinLength      int
	UpgradeOnLogin bool
}

// ResetConfig controls the password reset token protocol. TTL is the token
// lifetime; LinkBase is the host URL prefix the opaque token is appended to
// when building the link handed to the notification capability, e.g.
// "https://example.com/user/reset/" or "https://example.com/reset?token=".
type ResetConfig struct {
	TTL      time.Duration
	LinkBase string
}

// VerificationConfig gates login on the host's verification state when
// RequireVerifiedForLogin is set; the get-verification-state capability then
// becomes required.
type VerificationConfig struct {
	RequireVerifiedForLogin bool
}

// AuditConfig controls the asynchronous audit pipeline.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters and the optional login
// latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

const defaultResetTTL = 600 * time.Second

// DefaultConfig returns the configuration the builder starts from: argon2id
// at 64 MB memory, a 600 second reset token lifetime, audit and metrics off.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Password: PasswordConfig{
			Memory:         64 * 1024,
			Time:           2,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			MinLength:      8,
			UpgradeOnLogin: false,
		},
		Reset: ResetConfig{
			TTL: defaultResetTTL,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate reports configuration errors that Build should refuse. Password
// parameter bounds are enforced by the password codec itself.
func (c Config) Validate() error {
	if c.Reset.TTL <= 0 {
		return errors.New("reset ttl must be positive")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("audit buffer size must not be negative")
	}
	return nil
}
