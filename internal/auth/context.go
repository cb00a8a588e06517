// internal/auth/context.go
//
// Subject-in-context helper so handlers and middleware can share the
// verified user identity without re-verifying the cookie.
//
// Usage
// -----
//	// After full verification succeeds.
//	ctx = auth.WithSubject(ctx, sub)
//
//	// Downstream code retrieves it.
//	sub, ok := auth.SubjectFrom(ctx)

package auth

import (
	"context"

	"github.com/pocketrocks/pocketrocks/internal/identity"
)

// subjectKey is unexported to avoid context-key collisions.
type subjectKey struct{}

// WithSubject returns a new context carrying the verified subject.
func WithSubject(ctx context.Context, sub identity.Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, sub)
}

// SubjectFrom extracts the subject from ctx.  ok == false when no verified
// subject is attached.
func SubjectFrom(ctx context.Context) (identity.Subject, bool) {
	sub, ok := ctx.Value(subjectKey{}).(identity.Subject)
	return sub, ok && sub.ID != ""
}
