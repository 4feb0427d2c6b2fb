package userflow

import (
	"context"
	"time"
)

const (
	auditEventLoginSuccess          = "login_success"
	auditEventLoginFailure          = "login_failure"
	auditEventRegistrationSuccess   = "registration_success"
	auditEventRegistrationDuplicate = "registration_duplicate"
	auditEventRegistrationFailure   = "registration_failure"
	auditEventResetRequest          = "password_reset_request"
	auditEventResetRedeem           = "password_reset_redeem"
	auditEventResetReplay           = "password_reset_replay"
	auditEventResetComplete         = "password_reset_complete"
	auditEventCredentialUpgrade     = "credential_upgrade"
)

// AuditErrorCode is the stable, enum-like failure reason recorded on audit
// events.
type AuditErrorCode string

const (
	auditErrUnknownUser    AuditErrorCode = "unknown_user"
	auditErrBadPassword    AuditErrorCode = "bad_password"
	auditErrUnverified     AuditErrorCode = "unverified"
	auditErrDuplicate      AuditErrorCode = "duplicate"
	auditErrInvalidToken   AuditErrorCode = "invalid_token"
	auditErrReplay         AuditErrorCode = "replay"
	auditErrRejected       AuditErrorCode = "rejected"
	auditErrPasswordPolicy AuditErrorCode = "password_policy"
	auditErrUnavailable    AuditErrorCode = "backend_unavailable"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	identifier string,
	code AuditErrorCode,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	e.audit.Emit(ctx, AuditEvent{
		ID:         newAuditEventID(),
		Timestamp:  time.Now().UTC(),
		EventType:  eventType,
		Identifier: identifier,
		Success:    success,
		Error:      string(code),
		Metadata:   metadata,
	})
}
