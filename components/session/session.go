// components/session/session.go
//
// Credential exchange component.
//
// Turns a short-lived provider credential into the long-lived session
// cookie, reports the three-state session status, and clears the cookie
// on logout.  All responses are JSON and carry Cache-Control: no-store —
// session state must never be served stale.

package session

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pocketrocks/pocketrocks/internal/component"
	"github.com/pocketrocks/pocketrocks/internal/identity"
	"github.com/pocketrocks/pocketrocks/internal/metrics"
	"github.com/pocketrocks/pocketrocks/internal/requestinfo"
	"github.com/pocketrocks/pocketrocks/internal/session"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component encapsulates the /api/session surface.
type Component struct {
	cookie   session.Cookie
	verifier identity.Verifier
}

// Name returns the canonical component key.
func (c *Component) Name() string { return "session" }

// Init wires the provider client and cookie settings.
func (c *Component) Init(deps component.Deps) error {
	if deps.Verifier == nil {
		return errors.New("session: identity verifier is required")
	}
	c.cookie = deps.Cookie
	c.verifier = deps.Verifier
	return nil
}

// Routes attaches the credential-exchange endpoints.
func (c *Component) Routes(r chi.Router) {
	r.Post("/api/session", c.handleMint)
	r.Get("/api/session", c.handleStatus)
	r.Post("/api/session/logout", c.handleLogout)
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

type mintRequest struct {
	IDToken string `json:"idToken"`
}

// maxMintBody caps the credential payload; provider tokens are ~1 KB.
const maxMintBody = 64 << 10

func (c *Component) handleMint(w http.ResponseWriter, r *http.Request) {
	cred := credentialFrom(r)
	if cred == "" {
		metrics.SessionMintErrorsTotal.WithLabelValues("bad_input").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"ok":    false,
			"error": "missing credential",
		})
		return
	}

	token, err := c.verifier.MintSessionToken(r.Context(), cred, c.cookie.TTL)
	if err != nil {
		if errors.Is(err, identity.ErrRejected) {
			metrics.SessionMintErrorsTotal.WithLabelValues("rejected").Inc()
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"ok":    false,
				"error": identity.HumanMessage(err),
			})
			return
		}
		metrics.SessionMintErrorsTotal.WithLabelValues("provider").Inc()
		zap.S().Errorw("session mint failed upstream", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"ok":    false,
			"error": "sign-in service unavailable",
		})
		return
	}

	c.cookie.Set(w, r, token)
	metrics.SessionMintTotal.Inc()
	auditMint(r)

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (c *Component) handleStatus(w http.ResponseWriter, r *http.Request) {
	raw, present := c.cookie.Read(r)
	st := session.Project(r.Context(), c.verifier, raw, present)
	metrics.SessionStatusTotal.WithLabelValues(st.State.String()).Inc()

	body := map[string]any{
		"ok":         true,
		"hasSession": st.State != session.Absent,
		"verified":   st.State == session.PresentVerified,
		"cookieName": c.cookie.Name,
	}
	if st.SubjectID != "" {
		body["subjectId"] = st.SubjectID
	}
	if st.Diagnostic != "" {
		body["error"] = st.Diagnostic
	}
	writeJSON(w, http.StatusOK, body)
}

func (c *Component) handleLogout(w http.ResponseWriter, r *http.Request) {
	c.cookie.Clear(w, r)
	metrics.SessionClearTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

/*──────────────────────────── Helpers ──────────────────────────────────────*/

// credentialFrom extracts the provider credential: JSON body first, then
// the Authorization header as a fallback for clients that cannot POST a
// body (beacon-style calls).
func credentialFrom(r *http.Request) string {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()

	var req mintRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxMintBody))
	if err := dec.Decode(&req); err == nil && strings.TrimSpace(req.IDToken) != "" {
		return strings.TrimSpace(req.IDToken)
	}

	h := r.Header.Get("Authorization")
	if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(tok)
	}
	return ""
}

// auditMint emits one structured line per successful sign-in.  Device and
// geo fields are best-effort; absent middleware logs empty values.
func auditMint(r *http.Request) {
	var device, country string
	if ri := requestinfo.FromContext(r.Context()); ri != nil {
		device = ri.UA.Device
		if ri.Geo.CountryISO != "" {
			country = ri.Geo.CountryISO
		}
	}
	zap.S().Infow("session minted",
		"device", device,
		"country", country,
		"remote", r.RemoteAddr,
	)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
