package userflow

import (
	"context"
	"errors"

	"github.com/userflow-go/userflow/resettoken"
)

// RequestPasswordReset starts the reset protocol for the given identifier:
// resolve the user, fetch the host's reset key, issue a signed token with
// the configured TTL, and hand the reset link to the notification
// capability, whose boolean result is propagated.
//
// Returns (false, nil) for an unknown identifier. That boolean does reveal
// account existence to whoever can observe it; hosts that care about
// enumeration should present the same response to their caller either way.
func (e *Engine) RequestPasswordReset(ctx context.Context, identifier string) (bool, error) {
	if e == nil || e.resetTokens == nil {
		return false, ErrEngineNotReady
	}
	if e.caps.ResolveByIdentifier == nil {
		return false, capabilityError(capResolveByIdentifier)
	}
	if e.caps.GetResetKey == nil {
		return false, capabilityError(capGetResetKey)
	}
	if e.caps.SendResetNotification == nil {
		return false, capabilityError(capSendResetNotification)
	}

	user, err := e.caps.ResolveByIdentifier(ctx, identifier)
	if err != nil {
		return false, backendError(err)
	}
	if user == nil {
		e.metricInc(MetricResetRequestUnknown)
		e.emitAudit(ctx, auditEventResetRequest, false, identifier, auditErrUnknownUser, nil)
		return false, nil
	}

	resetKey, err := e.caps.GetResetKey(ctx, user)
	if err != nil {
		return false, backendError(err)
	}

	token, err := e.resetTokens.Issue(resetKey)
	if err != nil {
		return false, err
	}

	sent, err := e.caps.SendResetNotification(ctx, user, e.config.Reset.LinkBase+token)
	if err != nil {
		return false, backendError(err)
	}

	e.metricInc(MetricResetRequest)
	e.emitAudit(ctx, auditEventResetRequest, sent, identifier, "", nil)

	return sent, nil
}

// RedeemResetToken validates a reset token and resolves the user it belongs
// to. Returns (nil, nil) for any token that fails signature, structure, or
// expiry checks, is rejected by the host's extra claim validator, was
// already consumed (when a usage store is configured), or whose reset key
// resolves no user. The distinguishing reason is available through audit
// events and metrics; the return value deliberately is not distinguishing.
func (e *Engine) RedeemResetToken(ctx context.Context, token string) (any, error) {
	if e == nil || e.resetTokens == nil {
		return nil, ErrEngineNotReady
	}
	if e.caps.ResolveByResetKey == nil {
		return nil, capabilityError(capResolveByResetKey)
	}

	claim, err := e.resetTokens.Decode(token)
	if err != nil {
		if errors.Is(err, resettoken.ErrInvalid) {
			e.metricInc(MetricResetRedeemInvalid)
			e.emitAudit(ctx, auditEventResetRedeem, false, "", auditErrInvalidToken, nil)
			return nil, nil
		}
		return nil, err
	}

	// The host validator runs in addition to, never instead of, the
	// signature and expiry checks above.
	if e.caps.ValidateResetClaim != nil {
		accepted, err := e.caps.ValidateResetClaim(ctx, claim)
		if err != nil {
			return nil, backendError(err)
		}
		if !accepted {
			e.metricInc(MetricResetRedeemInvalid)
			e.emitAudit(ctx, auditEventResetRedeem, false, claim.ResetKey, auditErrRejected, nil)
			return nil, nil
		}
	}

	if e.usage != nil {
		fresh, err := e.usage.Consume(ctx, claim.ResetKey, claim.ExpiresAt)
		if err != nil {
			return nil, backendError(err)
		}
		if !fresh {
			e.metricInc(MetricResetReplayBlocked)
			e.emitAudit(ctx, auditEventResetReplay, false, claim.ResetKey, auditErrReplay, nil)
			return nil, nil
		}
	}

	user, err := e.caps.ResolveByResetKey(ctx, claim.ResetKey)
	if err != nil {
		return nil, backendError(err)
	}
	if user == nil {
		e.metricInc(MetricResetRedeemInvalid)
		e.emitAudit(ctx, auditEventResetRedeem, false, claim.ResetKey, auditErrUnknownUser, nil)
		return nil, nil
	}

	e.metricInc(MetricResetRedeemSuccess)
	e.emitAudit(ctx, auditEventResetRedeem, true, claim.ResetKey, "", nil)

	return user, nil
}

// CompletePasswordReset hashes the new password and persists it through the
// set-credential capability, returning its boolean result. Without a usage
// store the redeemed token itself stays valid until natural expiry; hosts
// wanting single use wire [Builder.WithTokenUsage] or track consumed reset
// keys in their extra claim validator.
func (e *Engine) CompletePasswordReset(ctx context.Context, user any, newPassword string) (bool, error) {
	if e == nil || e.hasher == nil {
		return false, ErrEngineNotReady
	}
	if e.caps.SetCredential == nil {
		return false, capabilityError(capSetCredential)
	}
	if user == nil {
		return false, nil
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		e.metricInc(MetricResetCompleteFailure)
		e.emitAudit(ctx, auditEventResetComplete, false, "", auditErrPasswordPolicy, nil)
		return false, policyError(err)
	}

	updated, err := e.caps.SetCredential(ctx, user, hash)
	if err != nil {
		return false, backendError(err)
	}
	if !updated {
		e.metricInc(MetricResetCompleteFailure)
		e.emitAudit(ctx, auditEventResetComplete, false, "", auditErrRejected, nil)
		return false, nil
	}

	e.metricInc(MetricResetCompleteSuccess)
	e.emitAudit(ctx, auditEventResetComplete, true, "", "", nil)

	return true, nil
}
