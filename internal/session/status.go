// internal/session/status.go
//
// Three-state session projection: absent, present-unverified,
// present-verified.  Computed fresh on every request and never cached;
// login and logout happen out-of-band and must be observed immediately.

package session

import (
	"context"
	"errors"

	"github.com/pocketrocks/pocketrocks/internal/identity"
)

// State is the projected session condition.
type State int

const (
	// Absent means no cookie accompanied the request.
	Absent State = iota
	// PresentUnverified means a cookie exists but verification failed or
	// errored.  Distinguishing this from Absent lets the client tell
	// "never logged in" from "cookie present but stale".
	PresentUnverified
	// PresentVerified means the provider vouched for the cookie.
	PresentVerified
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case PresentUnverified:
		return "unverified"
	case PresentVerified:
		return "verified"
	}
	return "unknown"
}

// Status is the read-only projection reported by the status endpoint.
type Status struct {
	State      State
	SubjectID  string // set only when verified
	Diagnostic string // human-safe note when unverified
}

// Project derives Status from the raw cookie value.  Verification failure
// is data, not an error: only the caller decides whether it matters.
func Project(ctx context.Context, v identity.Verifier, raw string, present bool) Status {
	if !present {
		return Status{State: Absent}
	}

	sub, err := v.VerifySessionToken(ctx, raw)
	if err != nil {
		diag := "session verification unavailable"
		if errors.Is(err, identity.ErrRejected) {
			diag = "session cookie is stale or invalid"
		}
		return Status{State: PresentUnverified, Diagnostic: diag}
	}
	return Status{State: PresentVerified, SubjectID: sub.ID}
}
