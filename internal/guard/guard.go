// internal/guard/guard.go
//
// Access Guard: one decision function for every request.
//
// Context
// -------
// Historic revisions re-derived "is this path protected, where does it
// redirect" in three or four places.  This package is the single source of
// truth: classify the path, check cookie *presence* (full verification is
// deferred to the page or route that actually needs the subject), and
// answer allow / redirect-to-login / redirect-onward.  The guard performs
// no I/O beyond the request's own cookie jar, so it cannot fail—unmatched
// paths fall through as allowed, erring toward availability since deeper
// checks still run downstream.

package guard

import (
	"net/url"
	"strings"
)

// Kind classifies a request path.
type Kind int

const (
	// Public paths are reachable without a session by definition; the
	// login screen and the credential-exchange endpoints live here.
	Public Kind = iota
	// Protected paths require at least a present session cookie.
	Protected
	// Transitional paths never render; they absorb old links and forward
	// an already-classified session to its correct destination.
	Transitional
)

// Rules carries the configured route constants.  One instance is built at
// boot and shared by the middleware and the page helpers.
type Rules struct {
	LoginPath   string // e.g. /login
	LandingPath string // canonical protected entry, e.g. /thinking
	TransitPath string // legacy doorway, e.g. /dashboard
}

// Decision is the guard's verdict for one request.
type Decision struct {
	Allow    bool
	Target   string // redirect target when !Allow
	Redirect string // "login" or "transit", for instrumentation
}

/*──────────────────────────── classification ───────────────────────────────*/

// publicPrefixes are reachable unconditionally.  The credential-exchange
// endpoints must be here or no one could ever log in.
var publicPrefixes = []string{
	"/login",
	"/signup",
	"/api/session",
	"/metrics",
	"/healthz",
	"/favicon.ico",
	"/static",
}

// protectedExtra are protected paths outside the landing subtree.
var protectedExtra = []string{
	"/rocks",
	"/api/thinking",
}

// Classify maps a request path to exactly one Kind.
func (ru Rules) Classify(path string) Kind {
	if path == "/" {
		return Public
	}
	for _, p := range publicPrefixes {
		if underPath(path, p) {
			return Public
		}
	}
	if underPath(path, ru.TransitPath) {
		return Transitional
	}
	if underPath(path, ru.LandingPath) {
		return Protected
	}
	for _, p := range protectedExtra {
		if underPath(path, p) {
			return Protected
		}
	}
	// Unmatched → allow by default; page-level checks still apply.
	return Public
}

// underPath reports whether path equals base or sits beneath it.
func underPath(path, base string) bool {
	return path == base || strings.HasPrefix(path, base+"/")
}

/*──────────────────────────── decisions ────────────────────────────────────*/

// Decide evaluates one request.  rawQuery is the original query string so
// the login round-trip restores the full destination.
func (ru Rules) Decide(path, rawQuery string, cookiePresent bool) Decision {
	switch ru.Classify(path) {
	case Public:
		return Decision{Allow: true}

	case Protected:
		if !cookiePresent {
			return Decision{Target: ru.loginRedirect(path, rawQuery), Redirect: "login"}
		}
		return Decision{Allow: true}

	case Transitional:
		if !cookiePresent {
			return Decision{Target: ru.loginRedirect(path, rawQuery), Redirect: "login"}
		}
		// A transitional stop is always a redirect, never a render.
		return Decision{Target: ru.LandingPath, Redirect: "transit"}
	}
	return Decision{Allow: true}
}

// loginRedirect builds /login?next=<original path+query>.
func (ru Rules) loginRedirect(path, rawQuery string) string {
	next := path
	if rawQuery != "" {
		next += "?" + rawQuery
	}
	return ru.LoginPath + "?next=" + url.QueryEscape(next)
}

/*──────────────────────────── safe redirects ───────────────────────────────*/

// SafeNext validates a candidate post-login destination.  The target must
// be a single-slash-rooted relative path, must not smuggle a scheme or a
// protocol-relative host, and must not point back at the login screen or
// the transitional stop (redirect loop).  Violations fall back to the
// canonical landing path rather than erroring: navigation should never
// break over a cosmetic issue.
func (ru Rules) SafeNext(raw string) string {
	v := strings.TrimSpace(raw)
	switch {
	case v == "":
		return ru.LandingPath
	case !strings.HasPrefix(v, "/"):
		return ru.LandingPath
	case strings.HasPrefix(v, "//"):
		return ru.LandingPath
	case strings.Contains(v, "://"):
		return ru.LandingPath
	}

	// Strip the query before comparing against loop targets.
	p := v
	if i := strings.IndexByte(p, '?'); i != -1 {
		p = p[:i]
	}
	if underPath(p, ru.LoginPath) || underPath(p, ru.TransitPath) {
		return ru.LandingPath
	}
	return v
}
