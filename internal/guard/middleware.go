// internal/guard/middleware.go
//
// HTTP wrappers around the guard decision function.
//
// Gate runs once per request at the top of the chain (coarse routing,
// presence check only).  RequirePage and RequireAPI run at the few routes
// that need the subject identity and perform full provider verification.

package guard

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pocketrocks/pocketrocks/internal/auth"
	"github.com/pocketrocks/pocketrocks/internal/identity"
	"github.com/pocketrocks/pocketrocks/internal/metrics"
	"github.com/pocketrocks/pocketrocks/internal/session"
)

// Gate wraps next with the guard decision.  It never errors to the caller;
// it only redirects or passes through.
func Gate(rules Rules, cookie session.Cookie, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := cookie.Read(r)

		d := rules.Decide(r.URL.Path, r.URL.RawQuery, present)
		if d.Allow {
			next.ServeHTTP(w, r)
			return
		}

		metrics.GuardRedirectTotal.WithLabelValues(d.Redirect).Inc()
		zap.S().Debugw("guard redirect",
			"path", r.URL.Path,
			"kind", d.Redirect,
			"target", d.Target,
		)
		http.Redirect(w, r, d.Target, http.StatusFound)
	})
}

// RequirePage fully verifies the session cookie and attaches the subject
// to the request context.  Missing or invalid sessions are redirected to
// the login screen with `next` pointing back at the requested page.
func RequirePage(rules Rules, cookie session.Cookie, v identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, present := cookie.Read(r)
			st := session.Project(r.Context(), v, raw, present)
			if st.State != session.PresentVerified {
				d := rules.Decide(r.URL.Path, r.URL.RawQuery, false)
				metrics.GuardRedirectTotal.WithLabelValues("login").Inc()
				http.Redirect(w, r, d.Target, http.StatusFound)
				return
			}
			ctx := auth.WithSubject(r.Context(), identity.Subject{ID: st.SubjectID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAPI is the JSON twin of RequirePage: 401 instead of a redirect.
func RequireAPI(cookie session.Cookie, v identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, present := cookie.Read(r)
			st := session.Project(r.Context(), v, raw, present)
			if st.State != session.PresentVerified {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"ok":false,"error":"authentication required"}`))
				return
			}
			ctx := auth.WithSubject(r.Context(), identity.Subject{ID: st.SubjectID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
