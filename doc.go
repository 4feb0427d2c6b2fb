// Package userflow is an embeddable, storage-agnostic authentication core.
//
// The host application owns the user database and supplies persistence and
// notification behavior as a set of capability callbacks; userflow supplies
// the security-sensitive logic: password hashing and verification, signed
// expiring reset tokens, and the sequencing rules around login, registration,
// and the three-step password reset protocol.
//
// An [Engine] is assembled once at startup through the [Builder], which
// fails fast on missing capabilities or an unset signing key, and is
// read-only afterwards. Wrong credentials, duplicate registrations, and
// invalid or expired tokens are ordinary outcomes reported as values;
// errors are reserved for broken configuration and backend faults.
//
// Session establishment, HTTP routing, rendering, TLS, rate limiting, and
// multi-factor authentication are host responsibilities and out of scope.
package userflow
