// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  cmd/web mounts every
// component's Routes() under the shared middleware stack at boot and
// invokes Init(deps) so components receive their wiring without importing
// each other.

package component

import (
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/pocketrocks/pocketrocks/internal/ai"
	"github.com/pocketrocks/pocketrocks/internal/config"
	"github.com/pocketrocks/pocketrocks/internal/guard"
	"github.com/pocketrocks/pocketrocks/internal/identity"
	"github.com/pocketrocks/pocketrocks/internal/session"
)

// Deps is handed to every component at boot.  Fields a component does not
// need are simply ignored; Chat is nil when no model is configured.
type Deps struct {
	Config   *config.Config
	Cookie   session.Cookie
	Rules    guard.Rules
	Verifier identity.Verifier
	DB       *sqlx.DB
	Chat     *ai.Service
}

// Component contract.
//
// Routes attaches BOTH page and API endpoints to the shared router, e.g:
//
//	r.Get("/login", getLogin)
//	r.Route("/api", func(api chi.Router) { … })
//
// Components own disjoint top-level paths, so registration order does not
// matter.
type Component interface {
	Name() string
	Init(Deps) error
	Routes(r chi.Router)
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component in arbitrary order.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	return out
}
