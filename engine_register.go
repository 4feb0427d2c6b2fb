package userflow

import "context"

// Register admits a new user. Both the username and the email are checked
// against existing identifiers through the resolve-by-identifier capability,
// short-circuiting on the first match; only when neither resolves is the
// insert-user capability invoked, and its boolean outcome is returned
// verbatim. A false return with a nil error means the registration was
// rejected as a duplicate or by the host's inserter.
//
// The uniqueness checks and the insert are not one atomic step: a host
// serving concurrent registrations must keep its own storage-level
// uniqueness constraint to close the race.
func (e *Engine) Register(ctx context.Context, data RegistrationData) (bool, error) {
	if e == nil {
		return false, ErrEngineNotReady
	}
	if e.caps.ResolveByIdentifier == nil {
		return false, capabilityError(capResolveByIdentifier)
	}
	if e.caps.InsertUser == nil {
		return false, capabilityError(capInsertUser)
	}

	for _, identifier := range []string{data.Username, data.Email} {
		existing, err := e.caps.ResolveByIdentifier(ctx, identifier)
		if err != nil {
			return false, backendError(err)
		}
		if existing != nil {
			e.metricInc(MetricRegistrationDuplicate)
			e.emitAudit(ctx, auditEventRegistrationDuplicate, false, identifier, auditErrDuplicate, nil)
			return false, nil
		}
	}

	inserted, err := e.caps.InsertUser(ctx, data)
	if err != nil {
		return false, backendError(err)
	}
	if !inserted {
		e.metricInc(MetricRegistrationFailure)
		e.emitAudit(ctx, auditEventRegistrationFailure, false, data.Username, auditErrRejected, nil)
		return false, nil
	}

	e.metricInc(MetricRegistrationSuccess)
	e.emitAudit(ctx, auditEventRegistrationSuccess, true, data.Username, "", nil)

	return true, nil
}
