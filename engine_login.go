package userflow

import (
	"context"
	"fmt"
	"time"
)

// Login resolves the identifier, verifies the password against the stored
// credential, and reports the outcome. UnknownUser, BadPassword, and
// Unverified are ordinary results, never errors; a verification fault from a
// malformed stored hash is downgraded to BadPassword. Errors are reserved
// for unconfigured capabilities and backend faults.
//
// On success the result carries the host's resolved user handle for the
// host's session mechanism, with the remember flag passed through.
func (e *Engine) Login(ctx context.Context, data LoginData) (LoginResult, error) {
	if e == nil || e.hasher == nil {
		return LoginResult{}, ErrEngineNotReady
	}
	if e.caps.ResolveByIdentifier == nil {
		return LoginResult{}, capabilityError(capResolveByIdentifier)
	}
	if e.caps.GetCredential == nil {
		return LoginResult{}, capabilityError(capGetCredential)
	}

	start := time.Now()
	defer e.observeLoginLatency(start)

	user, err := e.caps.ResolveByIdentifier(ctx, data.Identifier)
	if err != nil {
		return LoginResult{}, backendError(err)
	}
	if user == nil {
		e.metricInc(MetricLoginUnknownUser)
		e.emitAudit(ctx, auditEventLoginFailure, false, data.Identifier, auditErrUnknownUser, nil)
		return LoginResult{Outcome: LoginUnknownUser}, nil
	}

	storedHash, err := e.caps.GetCredential(ctx, user)
	if err != nil {
		return LoginResult{}, backendError(err)
	}

	ok, verifyErr := e.hasher.Verify(data.Password, storedHash)
	if verifyErr != nil || !ok {
		e.metricInc(MetricLoginBadPassword)
		e.emitAudit(ctx, auditEventLoginFailure, false, data.Identifier, auditErrBadPassword, func() map[string]string {
			if verifyErr == nil {
				return nil
			}
			return map[string]string{"reason": "credential_unreadable"}
		})
		return LoginResult{Outcome: LoginBadPassword}, nil
	}

	if e.config.Verification.RequireVerifiedForLogin {
		if e.caps.GetVerificationState == nil {
			return LoginResult{}, capabilityError(capGetVerificationState)
		}
		verified, err := e.caps.GetVerificationState(ctx, user)
		if err != nil {
			return LoginResult{}, backendError(err)
		}
		if !verified {
			e.metricInc(MetricLoginUnverified)
			e.emitAudit(ctx, auditEventLoginFailure, false, data.Identifier, auditErrUnverified, nil)
			return LoginResult{Outcome: LoginUnverified}, nil
		}
	}

	if e.config.Password.UpgradeOnLogin {
		e.upgradeCredential(ctx, user, data, storedHash)
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, data.Identifier, "", nil)

	return LoginResult{
		Outcome:  LoginSuccess,
		User:     user,
		Remember: data.Remember,
	}, nil
}

// upgradeCredential rehashes the just-verified password when the stored hash
// uses weaker parameters than currently configured. Best effort: persistence
// failures never affect the login outcome.
func (e *Engine) upgradeCredential(ctx context.Context, user any, data LoginData, storedHash string) {
	if e.caps.SetCredential == nil {
		return
	}

	up, err := e.hasher.NeedsUpgrade(storedHash)
	if err != nil || !up {
		return
	}

	newHash, err := e.hasher.Hash(data.Password)
	if err != nil {
		return
	}

	if ok, err := e.caps.SetCredential(ctx, user, newHash); err == nil && ok {
		e.metricInc(MetricCredentialUpgrade)
		e.emitAudit(ctx, auditEventCredentialUpgrade, true, data.Identifier, "", nil)
	}
}

func backendError(err error) error {
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}
