package userflow

import (
	"errors"

	"github.com/userflow-go/userflow/password"
	"github.com/userflow-go/userflow/resettoken"
	"github.com/userflow-go/userflow/store"
)

// Builder assembles an [Engine]. Configuration is assign-once: every With
// method may be called in any order and re-called before Build, but Build
// validates the complete set and a builder can only be used once.
type Builder struct {
	config     Config
	caps       Capabilities
	signingKey []byte
	auditSink  AuditSink
	usage      store.TokenUsageStore

	built bool
}

// New returns a builder pre-loaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithCapabilities sets the host callback set.
func (b *Builder) WithCapabilities(caps Capabilities) *Builder {
	b.caps = caps
	return b
}

// WithSigningKey sets the key reset tokens are signed with.
func (b *Builder) WithSigningKey(key []byte) *Builder {
	b.signingKey = key
	return b
}

// WithAuditSink sets the destination for audit events. Only consulted when
// auditing is enabled in the configuration.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithTokenUsage enables single-use reset tokens: redeeming a token marks
// its claim consumed in the given store and replays are rejected. Without a
// usage store a redeemed token stays valid until its natural expiry.
func (b *Builder) WithTokenUsage(usage store.TokenUsageStore) *Builder {
	b.usage = usage
	return b
}

// WithAuditEnabled toggles the audit pipeline.
func (b *Builder) WithAuditEnabled(enabled bool) *Builder {
	b.config.Audit.Enabled = enabled
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and capability set and returns the
// engine. Missing capabilities and an unset signing key fail here, at
// startup, rather than surfacing later as spurious "no such user" results.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(b.signingKey) == 0 {
		return nil, ErrSigningKeyMissing
	}

	if err := b.caps.validate(cfg.Verification.RequireVerifiedForLogin); err != nil {
		return nil, err
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
		MinLength:   cfg.Password.MinLength,
	})
	if err != nil {
		return nil, err
	}

	codec, err := resettoken.NewCodec(b.signingKey, cfg.Reset.TTL)
	if err != nil {
		return nil, err
	}

	b.built = true

	return &Engine{
		config:      cfg,
		caps:        b.caps,
		hasher:      hasher,
		resetTokens: codec,
		usage:       b.usage,
		audit:       newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:     NewMetrics(cfg.Metrics),
	}, nil
}
