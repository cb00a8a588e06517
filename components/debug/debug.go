// components/debug/debug.go
//
// Diagnostic component that echoes what the request-enrichment middleware
// saw: parsed user-agent, geolocation hints, and client IP.  Handy when
// chasing proxy-header problems in a new deployment.
package debug

import (
	"encoding/json"
	"net"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"

	"github.com/pocketrocks/pocketrocks/internal/component"
	"github.com/pocketrocks/pocketrocks/internal/requestinfo"
)

var _ component.Component = (*Component)(nil)

type Component struct{}

func (c *Component) Name() string { return "debug" }

func (c *Component) Init(component.Deps) error { return nil }

func (c *Component) Routes(r chi.Router) {
	r.Get("/debug/request", handler)
}

func init() { component.Register(&Component{}) }

// handler writes a JSON blob with selected context fields.
func handler(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"ip": clientIP(r),
		"ua": r.UserAgent(),
		"go": runtime.Version(),
	}
	if ri := requestinfo.FromContext(r.Context()); ri != nil {
		out["ua_parsed"] = ri.UA
		out["geo"] = map[string]any{
			"country": ri.Geo.CountryISO,
			"city":    ri.Geo.City,
		}
		out["at"] = ri.Timestamp
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

// clientIP grabs the remote address without port.
func clientIP(r *http.Request) string {
	h, _, _ := net.SplitHostPort(r.RemoteAddr)
	return h
}
