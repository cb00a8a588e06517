// internal/session/cookie.go
//
// Session-cookie helpers.
//
// Context
// -------
// The session artifact is one HTTP-only cookie whose value is an opaque
// token issued by the Identity/Credential Service.  This package is the
// only place that writes the cookie, so every issuer and reader agrees on
// name, path, and flags by construction.  The value is never constructed
// or parsed here—verification is the provider's job.
//
// The Secure flag tracks the effective connection scheme: direct TLS or a
// TLS-terminating proxy announced via X-Forwarded-Proto.  On plain-HTTP
// local development it must stay false or the browser silently drops the
// cookie.
package session

import (
	"net/http"
	"strings"
	"time"
)

// Cookie carries the shared cookie contract.  Built once from config and
// injected everywhere a session cookie is read or written.
type Cookie struct {
	Name string
	TTL  time.Duration
}

// Set writes the session cookie carrying the provider-issued token.
// Callers invoke this only after the credential has been verified.
func (c Cookie) Set(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/", // must be visible to every protected route
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.TTL.Seconds()),
	})
}

// Clear overwrites the cookie with an empty value and Max-Age zero, same
// name and path as issuance, so the browser removes it.  Idempotent.
func (c Cookie) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1, // serializes as Max-Age=0
		Expires:  time.Unix(0, 0),
	})
}

// Read returns the raw cookie value, if any.  ok == false when the cookie
// is missing or empty.
func (c Cookie) Read(r *http.Request) (raw string, ok bool) {
	ck, err := r.Cookie(c.Name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// requestIsSecure reports whether the client connection is effectively
// encrypted: direct TLS, or https announced by a trusted reverse proxy.
func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	proto := strings.ToLower(r.Header.Get("X-Forwarded-Proto"))
	return strings.Contains(proto, "https")
}
