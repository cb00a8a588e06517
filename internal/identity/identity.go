// internal/identity/identity.go
//
// Client contract for the external Identity/Credential Service.
//
// Context
// -------
// PocketRocks never holds signing keys and never parses session tokens
// locally.  Every credential check is delegated to the managed provider
// through this interface: verify a fresh sign-in credential, exchange it
// for an opaque session token, or verify an existing session token.  The
// rest of the codebase depends only on Verifier, so tests swap in stubs
// and the provider can change without touching handlers.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Subject identifies a verified user.  ID is the provider's opaque user
// identifier; Email may be empty when the provider does not return it.
type Subject struct {
	ID    string
	Email string
}

// ErrRejected marks a credential or session token the provider refused:
// forged, expired, revoked, or belonging to no user.  Handlers translate
// it to an authentication failure, never to a server error.
var ErrRejected = errors.New("identity: credential rejected")

// RejectionError carries the provider's error code alongside ErrRejected
// so callers can map it to a human-readable message.
type RejectionError struct {
	Code string // provider code, e.g. "INVALID_PASSWORD"
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("identity: credential rejected (%s)", e.Code)
}

func (e *RejectionError) Unwrap() error { return ErrRejected }

// Verifier is the boundary to the Identity/Credential Service.
type Verifier interface {
	// VerifyCredential checks a fresh sign-in credential (bearer token).
	VerifyCredential(ctx context.Context, credential string) (Subject, error)

	// MintSessionToken exchanges a verified credential for an opaque,
	// signed session token with the given validity window.
	MintSessionToken(ctx context.Context, credential string, ttl time.Duration) (string, error)

	// VerifySessionToken checks an existing session token and returns its
	// subject.  ErrRejected means the token is stale or invalid; any other
	// error means the provider could not be reached.
	VerifySessionToken(ctx context.Context, token string) (Subject, error)
}

// HumanMessage maps a verification failure to the short, specific message
// shown to users.  Raw provider text never reaches production responses.
func HumanMessage(err error) string {
	var rej *RejectionError
	if errors.As(err, &rej) {
		switch rej.Code {
		case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
			return "Incorrect email or password."
		case "USER_NOT_FOUND", "EMAIL_NOT_FOUND":
			return "No account exists for that email."
		case "EMAIL_EXISTS":
			return "That email is already registered."
		case "WEAK_PASSWORD":
			return "Please choose a stronger password."
		case "TOKEN_EXPIRED":
			return "Your sign-in expired.  Please log in again."
		}
	}
	if errors.Is(err, ErrRejected) {
		return "We could not verify you.  Please log in again."
	}
	return "Something went wrong.  Please try again."
}
