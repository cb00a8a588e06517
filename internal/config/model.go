// internal/config/model.go
//
// Typed configuration model for PocketRocks.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                 – dotenv values,
//   • `conf/global.yaml`                   – primary static file,
//   • `PR_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *after* unmarshalling, so downstream code never
// sees Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.  The Identity block in particular must be
// complete: running without provider credentials would silently degrade
// every session operation, which the service refuses to do.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import (
	"strings"
	"time"
)

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Session section
//

// Session describes the one cookie contract every issuer and reader of the
// session artifact must agree on.  CookieName and TTL are deliberately
// configuration, not constants: historic revisions disagreed on the
// validity window, and the service applies one value consistently.
type Session struct {
	CookieName string `koanf:"cookie_name" validate:"required"`
	TTLDays    int    `koanf:"ttl_days"    validate:"required,min=1,max=30"`
}

// TTL returns the configured validity window as a duration.
func (s Session) TTL() time.Duration {
	return time.Duration(s.TTLDays) * 24 * time.Hour
}

//
// Guard section
//

// Guard holds the route-classification constants the Access Guard and the
// page handlers share.  LandingPath is both the canonical post-login
// destination and the fallback for unsafe `next` targets.
type Guard struct {
	LoginPath   string `koanf:"login_path"   validate:"required,startswith=/"`
	LandingPath string `koanf:"landing_path" validate:"required,startswith=/"`
	TransitPath string `koanf:"transit_path" validate:"required,startswith=/"`
}

//
// Identity section
//

// Identity configures the client for the external Identity/Credential
// Service.  The service never holds key material locally; APIKey and the
// verify endpoints are all it needs.  BaseURL is overridable so tests and
// local emulators can stand in for the managed provider.
type Identity struct {
	ProjectID      string `koanf:"project_id" validate:"required"`
	APIKey         string `koanf:"api_key"    validate:"required"`
	BaseURL        string `koanf:"base_url"`
	TimeoutSeconds int    `koanf:"timeout_seconds" validate:"min=0,max=60"`
}

// Timeout returns the per-call ceiling for provider requests, defaulting
// to eight seconds when unset.
func (i Identity) Timeout() time.Duration {
	if i.TimeoutSeconds <= 0 {
		return 8 * time.Second
	}
	return time.Duration(i.TimeoutSeconds) * time.Second
}

//
// Database section
//

// Database holds the document-store DSN template and its secret.  The
// template stays in YAML so operators can tweak host, port, or flags; the
// password portion lives in Vault and is injected at runtime.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
}

// ResolvedDSN splices the (Vault-resolved) password into the DSN template's
// `{password}` marker.  Templates without the marker pass through unchanged.
func (d Database) ResolvedDSN() string {
	if d.Password == "" {
		return d.DSN
	}
	return strings.Replace(d.DSN, "{password}", d.Password, 1)
}

//
// AI section
//

// AI configures the optional thinking-partner chat model.  When APIKey is
// empty the chat endpoint reports unavailable instead of failing en route.
type AI struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

// Enabled reports whether the chat endpoint should be wired at all.
func (a AI) Enabled() bool { return a.APIKey != "" && a.Model != "" }

//
// Geo section
//

// Geo points at an optional MaxMind database used to annotate session-mint
// audit logs.  Missing file simply disables the lookup.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or PR_ROOT override) so later code can build
// absolute file paths.
type Paths struct {
	Root string // PR_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Session  Session  `koanf:"session"`
	Guard    Guard    `koanf:"guard"`
	Identity Identity `koanf:"identity"`
	Database Database `koanf:"database"`
	AI       AI       `koanf:"ai"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
