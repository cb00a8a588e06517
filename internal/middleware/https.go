// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"
	"strings"
)

// ForceHTTPS wraps h.  If the request arrived over plain HTTP and the host
// is not local development, the wrapper issues a 308 Permanent Redirect to
// the HTTPS version of the same URL.  Requests already encrypted—directly
// or via a TLS-terminating proxy—pass through unchanged.
func ForceHTTPS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil || forwardedHTTPS(r) || isLocalHost(r.Host) {
			h.ServeHTTP(w, r)
			return
		}

		target := "https://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}

func forwardedHTTPS(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("X-Forwarded-Proto")), "https")
}

// isLocalHost reports whether the Host header names local development.
func isLocalHost(h string) bool {
	if i := strings.IndexByte(h, ':'); i != -1 {
		h = h[:i]
	}
	return h == "localhost" || h == "127.0.0.1" || h == "::1"
}
