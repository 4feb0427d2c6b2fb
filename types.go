package userflow

import (
	"context"
	"fmt"

	"github.com/userflow-go/userflow/resettoken"
)

// LoginOutcome classifies the result of a login attempt. UnknownUser and
// BadPassword are distinguished internally so the host can log or meter
// them, but external surfaces should present identical messaging for both
// to avoid identifier enumeration.
type LoginOutcome uint8

const (
	// LoginUnknownUser means no user resolved for the identifier. The zero
	// value is a failure on purpose: a forgotten error check never reads as
	// a successful login.
	LoginUnknownUser LoginOutcome = iota
	// LoginBadPassword means the user resolved but verification failed.
	LoginBadPassword
	// LoginUnverified means credentials were correct but the account has not
	// completed verification and the engine is configured to require it.
	LoginUnverified
	// LoginSuccess means the identifier resolved and the password verified.
	LoginSuccess
)

func (o LoginOutcome) String() string {
	switch o {
	case LoginSuccess:
		return "success"
	case LoginUnknownUser:
		return "unknown_user"
	case LoginBadPassword:
		return "bad_password"
	case LoginUnverified:
		return "unverified"
	default:
		return "unknown"
	}
}

// LoginData is one login submission. Password is the raw password; it exists
// only for the duration of the verification call and is never persisted or
// logged.
type LoginData struct {
	Identifier string
	Password   string
	Remember   bool
}

// LoginResult carries the outcome of a login attempt. On success, User is
// the host's resolved user handle, ready for the host's session mechanism,
// and Remember is the submission's remember flag passed through unmodified.
type LoginResult struct {
	Outcome  LoginOutcome
	User     any
	Remember bool
}

// RegistrationData is one registration submission. PasswordHash is already a
// one-way hash at construction time; the core never stores or transmits a
// raw password beyond the hashing call. Use [Engine.HashPassword] to produce
// it.
type RegistrationData struct {
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
}

// Capabilities is the callback set the host must supply to give the engine
// access to its user storage and notification channel. The user handle
// passed through these callbacks is opaque to the engine: whatever
// ResolveByIdentifier and ResolveByResetKey return is handed back unchanged
// to GetCredential, SetCredential, and the notification sender.
//
// Resolution callbacks return a nil user (with a nil error) for "no such
// user"; errors are reserved for backend faults. Case sensitivity of
// identifier matching is host policy and is not touched by the engine.
type Capabilities struct {
	// ResolveByIdentifier returns the user for a username or email address.
	// The callback is expected to check both namespaces.
	ResolveByIdentifier func(ctx context.Context, identifier string) (any, error)

	// ResolveByResetKey returns the user for a reset key previously produced
	// by GetResetKey.
	ResolveByResetKey func(ctx context.Context, resetKey string) (any, error)

	// GetResetKey returns a stable identifier, unique per user, that binds a
	// reset token to the user. Often the email address.
	GetResetKey func(ctx context.Context, user any) (string, error)

	// GetCredential returns the user's current stored password hash.
	GetCredential func(ctx context.Context, user any) (string, error)

	// SetCredential persists a new password hash for the user.
	SetCredential func(ctx context.Context, user any, hash string) (bool, error)

	// InsertUser persists a new user from registration data.
	InsertUser func(ctx context.Context, data RegistrationData) (bool, error)

	// SendResetNotification delivers the reset link to the user out of band.
	SendResetNotification func(ctx context.Context, user any, link string) (bool, error)

	// ValidateResetClaim, if set, is consulted on every redeemed claim in
	// addition to (never instead of) the signature and expiry checks.
	// Returning false rejects the token. Optional.
	ValidateResetClaim func(ctx context.Context, claim resettoken.Claim) (bool, error)

	// GetVerificationState reports whether the user has completed
	// verification (for example email confirmation). Required only when
	// VerificationConfig.RequireVerifiedForLogin is set. Optional.
	GetVerificationState func(ctx context.Context, user any) (bool, error)

	// SetVerificationState records the user's verification state. Optional.
	SetVerificationState func(ctx context.Context, user any, verified bool) error
}

// Capability slot names, as reported by configuration errors.
const (
	capResolveByIdentifier   = "resolve-by-identifier"
	capResolveByResetKey     = "resolve-by-reset-key"
	capGetResetKey           = "get-reset-key"
	capGetCredential         = "get-credential"
	capSetCredential         = "set-credential"
	capInsertUser            = "insert-user"
	capSendResetNotification = "send-reset-notification"
	capGetVerificationState  = "get-verification-state"
)

func capabilityError(name string) error {
	return fmt.Errorf("%w: %s", ErrCapabilityNotConfigured, name)
}

func (c *Capabilities) validate(requireVerificationState bool) error {
	required := []struct {
		name string
		set  bool
	}{
		{capResolveByIdentifier, c.ResolveByIdentifier != nil},
		{capResolveByResetKey, c.ResolveByResetKey != nil},
		{capGetResetKey, c.GetResetKey != nil},
		{capGetCredential, c.GetCredential != nil},
		{capSetCredential, c.SetCredential != nil},
		{capInsertUser, c.InsertUser != nil},
		{capSendResetNotification, c.SendResetNotification != nil},
	}

	for _, slot := range required {
		if !slot.set {
			return capabilityError(slot.name)
		}
	}

	if requireVerificationState && c.GetVerificationState == nil {
		return capabilityError(capGetVerificationState)
	}

	return nil
}
