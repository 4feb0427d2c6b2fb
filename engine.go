package userflow

import (
	"errors"
	"time"

	"github.com/userflow-go/userflow/password"
	"github.com/userflow-go/userflow/resettoken"
	"github.com/userflow-go/userflow/store"
)

// Engine orchestrates login, registration, and password reset against the
// host's capability set. Safe for concurrent use once built; nothing in the
// engine mutates after Build, only the host's callbacks mutate host state.
type Engine struct {
	config      Config
	caps        Capabilities
	hasher      *password.Argon2
	resetTokens *resettoken.Codec
	usage       store.TokenUsageStore
	audit       *auditDispatcher
	metrics     *Metrics
}

// Close drains and stops the audit dispatcher. The engine must not be used
// afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters and
// histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// HashPassword hashes a raw password with the engine's credential codec,
// for hosts building [RegistrationData]. Returns [ErrPasswordPolicy] when
// the password fails the configured policy.
func (e *Engine) HashPassword(raw string) (string, error) {
	if e == nil || e.hasher == nil {
		return "", ErrEngineNotReady
	}

	hash, err := e.hasher.Hash(raw)
	if err != nil {
		return "", policyError(err)
	}
	return hash, nil
}

func policyError(err error) error {
	if errors.Is(err, password.ErrPasswordTooShort) {
		return ErrPasswordPolicy
	}
	return err
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) observeLoginLatency(start time.Time) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(MetricLoginLatency, time.Since(start))
}
